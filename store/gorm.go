package store

import (
	"context"
	"errors"
	"time"

	"bakeryapi/catalog"
	"bakeryapi/models"
	"bakeryapi/orders"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore implements Store on Postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// translate maps gorm errors onto the store sentinels. The connection must
// be opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

// affected turns a zero-row update or delete into ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Users

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, id).Error
	return u, translate(err)
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	return u, translate(err)
}

func (s *GormStore) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	users := []models.User{}
	q := s.db.WithContext(ctx).Order("id")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	return users, q.Find(&users).Error
}

func (s *GormStore) CreatePasswordReset(ctx context.Context, r *models.PasswordReset) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) ResetPassword(ctx context.Context, token, hash string, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.PasswordReset
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
			First(&r).Error
		if err != nil {
			return translate(err)
		}
		if err := affected(tx.Model(&models.User{}).Where("id = ?", r.UserID).Update("password", hash)); err != nil {
			return err
		}
		return tx.Model(&r).Update("used_at", now).Error
	})
}

// Categories

func (s *GormStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats := []models.Category{}
	err := s.db.WithContext(ctx).Order("display_order, id").Find(&cats).Error
	return cats, err
}

func (s *GormStore) GetCategory(ctx context.Context, id uint) (models.Category, error) {
	var c models.Category
	err := s.db.WithContext(ctx).First(&c, id).Error
	return c, translate(err)
}

func (s *GormStore) CreateCategory(ctx context.Context, c *models.Category) error {
	return translate(s.db.WithContext(ctx).Create(c).Error)
}

func (s *GormStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	res := s.db.WithContext(ctx).Model(&models.Category{ID: c.ID}).
		Select("name", "display_order").Updates(c)
	return affected(res)
}

func (s *GormStore) DeleteCategory(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inUse int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return ErrConflict
		}
		return affected(tx.Delete(&models.Category{}, id))
	})
}

// Products

func (s *GormStore) ListProducts(ctx context.Context, q catalog.Query) ([]models.Product, error) {
	db := s.db.WithContext(ctx).Model(&models.Product{})
	if q.CategoryID != 0 {
		db = db.Where("category_id = ?", q.CategoryID)
	}
	if q.OwnerID != 0 {
		db = db.Where("owner_id = ?", q.OwnerID)
	}
	if q.InStock {
		db = db.Where("stock > 0")
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	products := []models.Product{}
	err := db.Order(catalog.OrderClause(q.Sort)).Find(&products).Error
	return products, err
}

func (s *GormStore) GetProduct(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	return p, translate(err)
}

func (s *GormStore) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *GormStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	res := s.db.WithContext(ctx).Model(&models.Product{ID: p.ID}).
		Select("name", "description", "price", "stock", "category_id", "image_url").
		Updates(p)
	return affected(res)
}

func (s *GormStore) DeleteProduct(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartEntry{}).Error; err != nil {
			return err
		}
		return affected(tx.Delete(&models.Product{}, id))
	})
}

// Cart

func (s *GormStore) ListCartEntries(ctx context.Context, userID uint) ([]models.CartEntry, error) {
	return listCart(s.db.WithContext(ctx), userID)
}

func listCart(db *gorm.DB, userID uint) ([]models.CartEntry, error) {
	entries := []models.CartEntry{}
	err := db.Preload("Product").Where("user_id = ?", userID).Order("id").Find(&entries).Error
	return entries, err
}

func (s *GormStore) AddCartEntry(ctx context.Context, e *models.CartEntry) error {
	db := s.db.WithContext(ctx)
	if err := db.First(&e.Product, e.ProductID).Error; err != nil {
		return translate(err)
	}
	return db.Omit("Product").Create(e).Error
}

func (s *GormStore) DeleteCartEntry(ctx context.Context, userID, entryID uint) error {
	return affected(s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", entryID, userID).
		Delete(&models.CartEntry{}))
}

func (s *GormStore) SetCartQuantity(ctx context.Context, userID, productID uint, qty int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.Select("id").First(&p, productID).Error; err != nil {
			return translate(err)
		}
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartEntry{}).Error
		if err != nil || qty <= 0 {
			return err
		}
		e := models.CartEntry{UserID: userID, ProductID: productID, Quantity: qty}
		return tx.Omit("Product").Create(&e).Error
	})
}

func (s *GormStore) ClearCart(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartEntry{}).Error
}

// Orders

func (s *GormStore) Checkout(ctx context.Context, req CheckoutRequest) ([]models.Order, error) {
	var placed []models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the products in the cart so concurrent checkouts see each
		// other's stock decrements.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN (?)", tx.Model(&models.CartEntry{}).Select("product_id").Where("user_id = ?", req.CustomerID)).
			Find(&[]models.Product{}).Error
		if err != nil {
			return err
		}

		entries, err := listCart(tx, req.CustomerID)
		if err != nil {
			return err
		}
		built, take, err := buildOrders(entries, req)
		if err != nil {
			return err
		}

		for id, qty := range take {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", id, qty).
				Update("stock", gorm.Expr("stock - ?", qty))
			if err := affected(res); err != nil {
				return err
			}
		}
		for i := range built {
			built[i].CreatedAt = req.Now
			built[i].UpdatedAt = req.Now
		}
		if err := tx.Create(&built).Error; err != nil {
			return translate(err)
		}
		if err := tx.Where("user_id = ?", req.CustomerID).Delete(&models.CartEntry{}).Error; err != nil {
			return err
		}
		placed = built
		return nil
	})
	return placed, err
}

func (s *GormStore) GetOrder(ctx context.Context, id uint) (models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	return o, translate(err)
}

func (s *GormStore) GetOrderByNumber(ctx context.Context, number string) (models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Preload("Items").Where("order_number = ?", number).First(&o).Error
	return o, translate(err)
}

func (s *GormStore) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Order{})
	if f.CustomerID != 0 {
		db = db.Where("customer_id = ?", f.CustomerID)
	}
	if f.OwnerID != 0 {
		db = db.Where("owner_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}

	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	list := []models.Order{}
	q := db.Preload("Items").Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		page := max(f.Page, 1)
		q = q.Limit(f.Limit).Offset((page - 1) * f.Limit)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *GormStore) UpdateOrder(ctx context.Context, id uint, fn func(o *models.Order) error) (models.Order, error) {
	var out models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&o, id).Error
		if err != nil {
			return translate(err)
		}
		before := o.Status
		if err := fn(&o); err != nil {
			return err
		}

		if cancelling(before, o.Status) {
			for pid, qty := range restock(o) {
				err := tx.Model(&models.Product{}).Where("id = ?", pid).
					Update("stock", gorm.Expr("stock + ?", qty)).Error
				if err != nil {
					return err
				}
			}
		}

		err = tx.Model(&models.Order{ID: id}).
			Select("status", "payment_status", "payment_reference").
			Updates(&o).Error
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	return out, err
}

func (s *GormStore) HasCompletedOrderForProduct(ctx context.Context, customerID, productID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND orders.status = ? AND order_items.product_id = ?",
			customerID, orders.StatusCompleted, productID).
		Count(&n).Error
	return n > 0, err
}

// Addresses

func (s *GormStore) ListAddresses(ctx context.Context, userID uint) ([]models.DeliveryAddress, error) {
	list := []models.DeliveryAddress{}
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("is_default DESC, id").Find(&list).Error
	return list, err
}

func (s *GormStore) GetAddress(ctx context.Context, userID, id uint) (models.DeliveryAddress, error) {
	var a models.DeliveryAddress
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error
	return a, translate(err)
}

func unsetDefault(tx *gorm.DB, userID, except uint) error {
	return tx.Model(&models.DeliveryAddress{}).
		Where("user_id = ? AND id <> ? AND is_default", userID, except).
		Update("is_default", false).Error
}

func (s *GormStore) CreateAddress(ctx context.Context, a *models.DeliveryAddress) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.DeliveryAddress{}).Where("user_id = ?", a.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			a.IsDefault = true
		}
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		if a.IsDefault {
			return unsetDefault(tx, a.UserID, a.ID)
		}
		return nil
	})
}

func (s *GormStore) UpdateAddress(ctx context.Context, a *models.DeliveryAddress) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DeliveryAddress{}).
			Where("id = ? AND user_id = ?", a.ID, a.UserID).
			Select("recipient_name", "phone", "line1", "line2", "city", "postal_code", "is_default").
			Updates(a)
		if err := affected(res); err != nil {
			return err
		}
		if a.IsDefault {
			return unsetDefault(tx, a.UserID, a.ID)
		}
		return nil
	})
}

func (s *GormStore) DeleteAddress(ctx context.Context, userID, id uint) error {
	return affected(s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.DeliveryAddress{}))
}

// Reviews

func (s *GormStore) CreateReview(ctx context.Context, r *models.Review) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *GormStore) ListReviews(ctx context.Context, productID uint) ([]models.Review, error) {
	list := []models.Review{}
	err := s.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

// Adverts

func (s *GormStore) CreateAdvert(ctx context.Context, a *models.AdvertRequest) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormStore) GetAdvert(ctx context.Context, id uint) (models.AdvertRequest, error) {
	var a models.AdvertRequest
	err := s.db.WithContext(ctx).First(&a, id).Error
	return a, translate(err)
}

func (s *GormStore) ListAdverts(ctx context.Context, f AdvertFilter) ([]models.AdvertRequest, error) {
	db := s.db.WithContext(ctx)
	if f.OwnerID != 0 {
		db = db.Where("owner_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	list := []models.AdvertRequest{}
	err := db.Order("id DESC").Find(&list).Error
	return list, err
}

func (s *GormStore) UpdateAdvert(ctx context.Context, a *models.AdvertRequest) error {
	res := s.db.WithContext(ctx).Model(&models.AdvertRequest{ID: a.ID}).
		Select("status", "review_note", "starts_at", "ends_at").
		Updates(a)
	return affected(res)
}

func (s *GormStore) ListActiveAdverts(ctx context.Context, now time.Time) ([]models.AdvertRequest, error) {
	list := []models.AdvertRequest{}
	err := s.db.WithContext(ctx).
		Where("status = ? AND starts_at <= ? AND ends_at > ?", models.AdvertApproved, now, now).
		Order("id").Find(&list).Error
	return list, err
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{
		&models.User{},
		&models.PasswordReset{},
		&models.Category{},
		&models.Product{},
		&models.CartEntry{},
		&models.Order{},
		&models.OrderItem{},
		&models.DeliveryAddress{},
		&models.Review{},
		&models.AdvertRequest{},
	}
}
