// Package store is the persistence port of the API. GormStore backs it
// with Postgres; MemoryStore keeps everything in maps for tests and local
// runs.
package store

import (
	"context"
	"time"

	"bakeryapi/apperr"
	"bakeryapi/catalog"
	"bakeryapi/models"
)

var (
	// ErrNotFound is returned when a record does not exist or is not
	// visible to the caller.
	ErrNotFound = &apperr.Error{Kind: apperr.NotFound, Message: "not found"}
	// ErrConflict is returned on unique-key violations and on deletes that
	// would orphan other records.
	ErrConflict = &apperr.Error{Kind: apperr.Conflict, Message: "conflict"}
)

// Store defines every persistence operation the handlers need.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id uint) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)

	// CreatePasswordReset stores a single-use token.
	CreatePasswordReset(ctx context.Context, r *models.PasswordReset) error
	// ResetPassword consumes token and sets the user's password hash. An
	// unknown, used or expired token is ErrNotFound.
	ResetPassword(ctx context.Context, token, hash string, now time.Time) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	// DeleteCategory fails with ErrConflict while products reference it.
	DeleteCategory(ctx context.Context, id uint) error

	ListProducts(ctx context.Context, q catalog.Query) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error

	// ListCartEntries returns the user's raw entries in insertion order with
	// the current product joined in.
	ListCartEntries(ctx context.Context, userID uint) ([]models.CartEntry, error)
	AddCartEntry(ctx context.Context, e *models.CartEntry) error
	DeleteCartEntry(ctx context.Context, userID, entryID uint) error
	// SetCartQuantity replaces every entry for the product with a single
	// entry of qty. Zero removes the product from the cart.
	SetCartQuantity(ctx context.Context, userID, productID uint, qty int) error
	ClearCart(ctx context.Context, userID uint) error

	// Checkout turns the user's cart into one order per bakery, decrements
	// stock and clears the cart in a single transaction.
	Checkout(ctx context.Context, req CheckoutRequest) ([]models.Order, error)
	GetOrder(ctx context.Context, id uint) (models.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (models.Order, error)
	// ListOrders returns matching orders newest first and the total match
	// count. Limit 0 returns every match.
	ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, int64, error)
	// UpdateOrder loads the order, lets fn check and mutate it and saves the
	// result. Moving an order to cancelled puts its items back in stock.
	UpdateOrder(ctx context.Context, id uint, fn func(o *models.Order) error) (models.Order, error)
	HasCompletedOrderForProduct(ctx context.Context, customerID, productID uint) (bool, error)

	ListAddresses(ctx context.Context, userID uint) ([]models.DeliveryAddress, error)
	GetAddress(ctx context.Context, userID, id uint) (models.DeliveryAddress, error)
	// CreateAddress and UpdateAddress keep at most one default per user.
	// A user's first address becomes the default.
	CreateAddress(ctx context.Context, a *models.DeliveryAddress) error
	UpdateAddress(ctx context.Context, a *models.DeliveryAddress) error
	DeleteAddress(ctx context.Context, userID, id uint) error

	// CreateReview fails with ErrConflict if the user already reviewed the
	// product.
	CreateReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, productID uint) ([]models.Review, error)

	CreateAdvert(ctx context.Context, a *models.AdvertRequest) error
	GetAdvert(ctx context.Context, id uint) (models.AdvertRequest, error)
	ListAdverts(ctx context.Context, f AdvertFilter) ([]models.AdvertRequest, error)
	UpdateAdvert(ctx context.Context, a *models.AdvertRequest) error
	ListActiveAdverts(ctx context.Context, now time.Time) ([]models.AdvertRequest, error)
}

// AdvertFilter narrows advert listings. Zero values match everything.
type AdvertFilter struct {
	OwnerID uint
	Status  models.AdvertStatus
}

// CheckoutRequest carries what Checkout needs besides the cart itself.
type CheckoutRequest struct {
	CustomerID      uint
	DeliveryAddress string
	Note            string
	Now             time.Time
}
