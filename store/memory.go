package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"bakeryapi/catalog"
	"bakeryapi/models"
	"bakeryapi/orders"
)

// MemoryStore is an in-memory implementation of Store.
// It is safe for concurrent use via internal RWMutex.
type MemoryStore struct {
	mu sync.RWMutex

	nextID     uint
	users      map[uint]models.User
	resets     map[string]models.PasswordReset
	categories map[uint]models.Category
	products   map[uint]models.Product
	cart       []models.CartEntry // all users, insertion order
	orders     map[uint]models.Order
	addresses  map[uint]models.DeliveryAddress
	reviews    []models.Review
	adverts    map[uint]models.AdvertRequest

	now func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:     1,
		users:      make(map[uint]models.User),
		resets:     make(map[string]models.PasswordReset),
		categories: make(map[uint]models.Category),
		products:   make(map[uint]models.Product),
		orders:     make(map[uint]models.Order),
		addresses:  make(map[uint]models.DeliveryAddress),
		adverts:    make(map[uint]models.AdvertRequest),
		now:        time.Now,
	}
}

// id hands out ids from one sequence shared by every table; callers hold mu.
func (s *MemoryStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// sortedValues returns map values ordered by id.
func sortedValues[T any](m map[uint]T) []T {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	u.ID = s.id()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id uint) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.User{}
	for _, u := range sortedValues(s.users) {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreatePasswordReset(_ context.Context, r *models.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resets[r.Token]; ok {
		return ErrConflict
	}
	r.CreatedAt = s.now()
	s.resets[r.Token] = *r
	return nil
}

func (s *MemoryStore) ResetPassword(_ context.Context, token, hash string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resets[token]
	if !ok || r.UsedAt != nil || !now.Before(r.ExpiresAt) {
		return ErrNotFound
	}
	u, ok := s.users[r.UserID]
	if !ok {
		return ErrNotFound
	}
	u.Password = hash
	u.UpdatedAt = now
	s.users[u.ID] = u

	r.UsedAt = &now
	s.resets[token] = r
	return nil
}

// Categories

func (s *MemoryStore) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := sortedValues(s.categories)
	slices.SortStableFunc(out, func(a, b models.Category) int { return a.DisplayOrder - b.DisplayOrder })
	return out, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id uint) (models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return models.Category{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) categoryNameTaken(name string, except uint) bool {
	for _, c := range s.categories {
		if c.ID != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryNameTaken(c.Name, 0) {
		return ErrConflict
	}
	c.ID = s.id()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.categories[c.ID]
	if !ok {
		return ErrNotFound
	}
	if s.categoryNameTaken(c.Name, c.ID) {
		return ErrConflict
	}
	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = s.now()
	s.categories[c.ID] = *c
	return nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return ErrNotFound
	}
	for _, p := range s.products {
		if p.CategoryID == id {
			return ErrConflict
		}
	}
	delete(s.categories, id)
	return nil
}

// Products

func (s *MemoryStore) ListProducts(_ context.Context, q catalog.Query) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return catalog.Apply(sortedValues(s.products), q), nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id uint) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.id()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.products[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = s.now()
	s.products[p.ID] = *p
	return nil
}

// DeleteProduct also drops the product from every cart.
func (s *MemoryStore) DeleteProduct(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	s.cart = slices.DeleteFunc(s.cart, func(e models.CartEntry) bool { return e.ProductID == id })
	return nil
}

// Cart

func (s *MemoryStore) ListCartEntries(_ context.Context, userID uint) ([]models.CartEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cartOf(userID), nil
}

func (s *MemoryStore) cartOf(userID uint) []models.CartEntry {
	out := []models.CartEntry{}
	for _, e := range s.cart {
		if e.UserID == userID {
			e.Product = s.products[e.ProductID]
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryStore) AddCartEntry(_ context.Context, e *models.CartEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[e.ProductID]
	if !ok {
		return ErrNotFound
	}
	e.ID = s.id()
	e.CreatedAt = s.now()
	stored := *e
	stored.Product = models.Product{}
	s.cart = append(s.cart, stored)
	e.Product = p
	return nil
}

func (s *MemoryStore) DeleteCartEntry(_ context.Context, userID, entryID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.cart)
	s.cart = slices.DeleteFunc(s.cart, func(e models.CartEntry) bool { return e.ID == entryID && e.UserID == userID })
	if len(s.cart) == n {
		return ErrNotFound
	}
	return nil
}

func (s *MemoryStore) SetCartQuantity(_ context.Context, userID, productID uint, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return ErrNotFound
	}
	s.cart = slices.DeleteFunc(s.cart, func(e models.CartEntry) bool { return e.UserID == userID && e.ProductID == productID })
	if qty > 0 {
		s.cart = append(s.cart, models.CartEntry{ID: s.id(), UserID: userID, ProductID: productID, Quantity: qty, CreatedAt: s.now()})
	}
	return nil
}

func (s *MemoryStore) ClearCart(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = slices.DeleteFunc(s.cart, func(e models.CartEntry) bool { return e.UserID == userID })
	return nil
}

// Orders

func (s *MemoryStore) Checkout(_ context.Context, req CheckoutRequest) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	built, take, err := buildOrders(s.cartOf(req.CustomerID), req)
	if err != nil {
		return nil, err
	}

	for id, qty := range take {
		p := s.products[id]
		p.Stock -= qty
		s.products[id] = p
	}
	for i := range built {
		o := &built[i]
		o.ID = s.id()
		o.CreatedAt = req.Now
		o.UpdatedAt = req.Now
		for j := range o.Items {
			o.Items[j].ID = s.id()
			o.Items[j].OrderID = o.ID
		}
		s.orders[o.ID] = cloneOrder(*o)
	}
	s.cart = slices.DeleteFunc(s.cart, func(e models.CartEntry) bool { return e.UserID == req.CustomerID })
	return built, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

func (s *MemoryStore) GetOrder(_ context.Context, id uint) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (s *MemoryStore) GetOrderByNumber(_ context.Context, number string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return models.Order{}, ErrNotFound
}

func (s *MemoryStore) ListOrders(_ context.Context, f models.OrderFilter) ([]models.Order, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := sortedValues(s.orders)
	slices.Reverse(all)

	matched := []models.Order{}
	for _, o := range all {
		if f.CustomerID != 0 && o.CustomerID != f.CustomerID {
			continue
		}
		if f.OwnerID != 0 && o.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}

	total := int64(len(matched))
	if f.Limit > 0 {
		page := max(f.Page, 1)
		start := min((page-1)*f.Limit, len(matched))
		end := min(start+f.Limit, len(matched))
		matched = matched[start:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) UpdateOrder(_ context.Context, id uint, fn func(o *models.Order) error) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrNotFound
	}
	o := cloneOrder(stored)
	if err := fn(&o); err != nil {
		return models.Order{}, err
	}
	if cancelling(stored.Status, o.Status) {
		for pid, qty := range restock(stored) {
			if p, ok := s.products[pid]; ok {
				p.Stock += qty
				s.products[pid] = p
			}
		}
	}
	o.ID = stored.ID
	o.UpdatedAt = s.now()
	s.orders[id] = cloneOrder(o)
	return o, nil
}

func (s *MemoryStore) HasCompletedOrderForProduct(_ context.Context, customerID, productID uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.CustomerID != customerID || o.Status != orders.StatusCompleted {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// Addresses

func (s *MemoryStore) ListAddresses(_ context.Context, userID uint) ([]models.DeliveryAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.DeliveryAddress{}
	for _, a := range sortedValues(s.addresses) {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	// default first
	slices.SortStableFunc(out, func(a, b models.DeliveryAddress) int {
		switch {
		case a.IsDefault == b.IsDefault:
			return 0
		case a.IsDefault:
			return -1
		default:
			return 1
		}
	})
	return out, nil
}

func (s *MemoryStore) GetAddress(_ context.Context, userID, id uint) (models.DeliveryAddress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return models.DeliveryAddress{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) unsetDefault(userID, except uint) {
	for id, a := range s.addresses {
		if a.UserID == userID && id != except && a.IsDefault {
			a.IsDefault = false
			s.addresses[id] = a
		}
	}
}

func (s *MemoryStore) CreateAddress(_ context.Context, a *models.DeliveryAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := true
	for _, other := range s.addresses {
		if other.UserID == a.UserID {
			first = false
			break
		}
	}
	if first {
		a.IsDefault = true
	}

	a.ID = s.id()
	a.CreatedAt = s.now()
	a.UpdatedAt = a.CreatedAt
	if a.IsDefault {
		s.unsetDefault(a.UserID, a.ID)
	}
	s.addresses[a.ID] = *a
	return nil
}

func (s *MemoryStore) UpdateAddress(_ context.Context, a *models.DeliveryAddress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.addresses[a.ID]
	if !ok || old.UserID != a.UserID {
		return ErrNotFound
	}
	if a.IsDefault {
		s.unsetDefault(a.UserID, a.ID)
	}
	a.CreatedAt = old.CreatedAt
	a.UpdatedAt = s.now()
	s.addresses[a.ID] = *a
	return nil
}

func (s *MemoryStore) DeleteAddress(_ context.Context, userID, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.addresses[id]
	if !ok || a.UserID != userID {
		return ErrNotFound
	}
	delete(s.addresses, id)
	return nil
}

// Reviews

func (s *MemoryStore) CreateReview(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return ErrConflict
		}
	}
	r.ID = s.id()
	r.CreatedAt = s.now()
	s.reviews = append(s.reviews, *r)
	return nil
}

// ListReviews returns the newest reviews first.
func (s *MemoryStore) ListReviews(_ context.Context, productID uint) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Review{}
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].ProductID == productID {
			out = append(out, s.reviews[i])
		}
	}
	return out, nil
}

// Adverts

func (s *MemoryStore) CreateAdvert(_ context.Context, a *models.AdvertRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.id()
	a.CreatedAt = s.now()
	a.UpdatedAt = a.CreatedAt
	s.adverts[a.ID] = *a
	return nil
}

func (s *MemoryStore) GetAdvert(_ context.Context, id uint) (models.AdvertRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.adverts[id]
	if !ok {
		return models.AdvertRequest{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) ListAdverts(_ context.Context, f AdvertFilter) ([]models.AdvertRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := sortedValues(s.adverts)
	slices.Reverse(all)
	out := []models.AdvertRequest{}
	for _, a := range all {
		if f.OwnerID != 0 && a.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *MemoryStore) UpdateAdvert(_ context.Context, a *models.AdvertRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.adverts[a.ID]
	if !ok {
		return ErrNotFound
	}
	a.CreatedAt = old.CreatedAt
	a.UpdatedAt = s.now()
	s.adverts[a.ID] = *a
	return nil
}

func (s *MemoryStore) ListActiveAdverts(_ context.Context, now time.Time) ([]models.AdvertRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AdvertRequest{}
	for _, a := range sortedValues(s.adverts) {
		if a.Active(now) {
			out = append(out, a)
		}
	}
	return out, nil
}
