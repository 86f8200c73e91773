package store

import (
	"context"
	"testing"
	"time"

	"bakeryapi/apperr"
	"bakeryapi/catalog"
	"bakeryapi/models"
	"bakeryapi/orders"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkoutTime = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

func seedProduct(t *testing.T, s Store, owner uint, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{OwnerID: owner, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, s.CreateProduct(context.Background(), &p))
	return p
}

func addToCart(t *testing.T, s Store, user, product uint, qty int) {
	t.Helper()
	require.NoError(t, s.AddCartEntry(context.Background(), &models.CartEntry{UserID: user, ProductID: product, Quantity: qty}))
}

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := models.User{Name: "Ann", Email: "ann@example.com", Role: models.RoleCustomer}
	require.NoError(t, s.CreateUser(ctx, &u))
	assert.NotZero(t, u.ID)

	dup := models.User{Name: "Ann 2", Email: "ANN@example.com"}
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), ErrConflict)

	got, err := s.GetUserByEmail(ctx, "Ann@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestMemoryResetPassword(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := models.User{Email: "a@example.com", Password: "old"}
	require.NoError(t, s.CreateUser(ctx, &u))

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreatePasswordReset(ctx, &models.PasswordReset{Token: "tok", UserID: u.ID, ExpiresAt: now.Add(time.Hour)}))

	assert.ErrorIs(t, s.ResetPassword(ctx, "tok", "new", now.Add(2*time.Hour)), ErrNotFound, "expired")
	require.NoError(t, s.ResetPassword(ctx, "tok", "new", now))
	assert.ErrorIs(t, s.ResetPassword(ctx, "tok", "newer", now), ErrNotFound, "single use")

	got, _ := s.GetUser(ctx, u.ID)
	assert.Equal(t, "new", got.Password)
}

func TestMemoryDeleteCategoryInUse(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	c := models.Category{Name: "Bread"}
	require.NoError(t, s.CreateCategory(ctx, &c))
	assert.ErrorIs(t, s.CreateCategory(ctx, &models.Category{Name: "bread"}), ErrConflict)

	p := models.Product{OwnerID: 1, CategoryID: c.ID, Name: "Rye", Price: decimal.NewFromInt(3)}
	require.NoError(t, s.CreateProduct(ctx, &p))

	assert.ErrorIs(t, s.DeleteCategory(ctx, c.ID), ErrConflict)
	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.NoError(t, s.DeleteCategory(ctx, c.ID))
	assert.ErrorIs(t, s.DeleteCategory(ctx, c.ID), ErrNotFound)
}

func TestMemoryListProductsUsesCatalog(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedProduct(t, s, 1, "Baguette", "3.00", 5)
	seedProduct(t, s, 1, "Brioche", "4.50", 0)
	seedProduct(t, s, 2, "Cheesecake", "12.00", 2)

	got, err := s.ListProducts(ctx, catalog.Query{OwnerID: 1, Sort: catalog.SortPriceDesc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Brioche", got[0].Name)

	got, err = s.ListProducts(ctx, catalog.Query{InStock: true, Search: "cheese"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cheesecake", got[0].Name)
}

func TestMemoryCartEntriesJoinCurrentProduct(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, 1, "Bagel", "1.20", 10)

	addToCart(t, s, 7, p.ID, 1)
	addToCart(t, s, 7, p.ID, 1)
	addToCart(t, s, 8, p.ID, 4)

	entries, err := s.ListCartEntries(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Bagel", entries[0].Product.Name)

	view := models.NewCartView(entries)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Quantity)

	require.NoError(t, s.SetCartQuantity(ctx, 7, p.ID, 5))
	entries, _ = s.ListCartEntries(ctx, 7)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Quantity)

	require.NoError(t, s.SetCartQuantity(ctx, 7, p.ID, 0))
	entries, _ = s.ListCartEntries(ctx, 7)
	assert.Empty(t, entries)

	other, _ := s.ListCartEntries(ctx, 8)
	assert.Len(t, other, 1, "other carts untouched")

	assert.ErrorIs(t, s.DeleteCartEntry(ctx, 7, other[0].ID), ErrNotFound)
	assert.ErrorIs(t, s.AddCartEntry(ctx, &models.CartEntry{UserID: 7, ProductID: 999, Quantity: 1}), ErrNotFound)
}

func TestMemoryCheckoutSplitsPerOwner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	bread := seedProduct(t, s, 1, "Sourdough", "6.00", 10)
	cake := seedProduct(t, s, 2, "Carrot cake", "15.00", 3)
	roll := seedProduct(t, s, 1, "Cinnamon roll", "2.50", 20)

	addToCart(t, s, 9, bread.ID, 1)
	addToCart(t, s, 9, cake.ID, 1)
	addToCart(t, s, 9, bread.ID, 2)
	addToCart(t, s, 9, roll.ID, 4)

	placed, err := s.Checkout(ctx, CheckoutRequest{CustomerID: 9, DeliveryAddress: "1 Oven Rd", Now: checkoutTime})
	require.NoError(t, err)
	require.Len(t, placed, 2)

	first := placed[0]
	assert.Equal(t, uint(1), first.OwnerID)
	assert.Equal(t, orders.StatusPending, first.Status)
	assert.Equal(t, orders.PaymentUnpaid, first.PaymentStatus)
	assert.Contains(t, first.OrderNumber, "ORD-20261001-")
	require.Len(t, first.Items, 2)
	assert.Equal(t, 3, first.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("28.00").Equal(first.TotalAmount))

	assert.Equal(t, uint(2), placed[1].OwnerID)
	assert.True(t, decimal.RequireFromString("15.00").Equal(placed[1].TotalAmount))
	assert.NotEqual(t, first.OrderNumber, placed[1].OrderNumber)

	p, _ := s.GetProduct(ctx, bread.ID)
	assert.Equal(t, 7, p.Stock)
	entries, _ := s.ListCartEntries(ctx, 9)
	assert.Empty(t, entries)
}

func TestMemoryCheckoutRejects(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cake := seedProduct(t, s, 2, "Pavlova", "20.00", 1)

	_, err := s.Checkout(ctx, CheckoutRequest{CustomerID: 4, Now: checkoutTime})
	assert.Equal(t, apperr.Invalid, apperr.KindOf(err))
	assert.EqualError(t, err, "cart is empty")

	addToCart(t, s, 4, cake.ID, 1)
	addToCart(t, s, 4, cake.ID, 1)
	_, err = s.Checkout(ctx, CheckoutRequest{CustomerID: 4, Now: checkoutTime})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Available: 1, Requested: 2")

	p, _ := s.GetProduct(ctx, cake.ID)
	assert.Equal(t, 1, p.Stock, "failed checkout leaves stock alone")
	entries, _ := s.ListCartEntries(ctx, 4)
	assert.Len(t, entries, 2, "failed checkout keeps the cart")
}

func TestMemoryUpdateOrderCancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, 1, "Eclair", "3.00", 5)
	addToCart(t, s, 3, p.ID, 2)
	placed, err := s.Checkout(ctx, CheckoutRequest{CustomerID: 3, Now: checkoutTime})
	require.NoError(t, err)

	_, err = s.UpdateOrder(ctx, placed[0].ID, func(o *models.Order) error {
		return orders.CheckTransition(o.Status, orders.StatusCompleted)
	})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	updated, err := s.UpdateOrder(ctx, placed[0].ID, func(o *models.Order) error {
		o.Status = orders.StatusCancelled
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, updated.Status)

	got, _ := s.GetProduct(ctx, p.ID)
	assert.Equal(t, 5, got.Stock)

	byNumber, err := s.GetOrderByNumber(ctx, placed[0].OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, byNumber.Status)
}

func TestMemoryListOrdersPaginates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, 1, "Muffin", "2.00", 100)
	for i := 0; i < 5; i++ {
		addToCart(t, s, 6, p.ID, 1)
		_, err := s.Checkout(ctx, CheckoutRequest{CustomerID: 6, Now: checkoutTime})
		require.NoError(t, err)
	}

	page, total, err := s.ListOrders(ctx, models.OrderFilter{CustomerID: 6, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)

	all, _, _ := s.ListOrders(ctx, models.OrderFilter{OwnerID: 1})
	require.Len(t, all, 5)
	assert.Greater(t, all[0].ID, all[4].ID, "newest first")
	assert.Equal(t, all[2].ID, page[0].ID)

	none, total, _ := s.ListOrders(ctx, models.OrderFilter{Status: orders.StatusCompleted})
	assert.Empty(t, none)
	assert.Zero(t, total)
}

func TestMemoryHasCompletedOrderForProduct(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p := seedProduct(t, s, 1, "Scone", "2.00", 10)
	addToCart(t, s, 5, p.ID, 1)
	placed, _ := s.Checkout(ctx, CheckoutRequest{CustomerID: 5, Now: checkoutTime})

	ok, err := s.HasCompletedOrderForProduct(ctx, 5, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, st := range []orders.Status{orders.StatusProcessing, orders.StatusCompleted} {
		_, err := s.UpdateOrder(ctx, placed[0].ID, func(o *models.Order) error {
			o.Status = st
			return nil
		})
		require.NoError(t, err)
	}
	ok, _ = s.HasCompletedOrderForProduct(ctx, 5, p.ID)
	assert.True(t, ok)
}

func TestMemoryAddressDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	home := models.DeliveryAddress{UserID: 2, RecipientName: "Home"}
	require.NoError(t, s.CreateAddress(ctx, &home))
	assert.True(t, home.IsDefault, "first address becomes default")

	work := models.DeliveryAddress{UserID: 2, RecipientName: "Work", IsDefault: true}
	require.NoError(t, s.CreateAddress(ctx, &work))

	list, err := s.ListAddresses(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Work", list[0].RecipientName)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	_, err = s.GetAddress(ctx, 3, home.ID)
	assert.ErrorIs(t, err, ErrNotFound, "other users cannot see it")
	assert.ErrorIs(t, s.DeleteAddress(ctx, 3, home.ID), ErrNotFound)
	assert.NoError(t, s.DeleteAddress(ctx, 2, home.ID))
}

func TestMemoryReviewsAndAdverts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateReview(ctx, &models.Review{ProductID: 1, UserID: 2, Rating: 5}))
	assert.ErrorIs(t, s.CreateReview(ctx, &models.Review{ProductID: 1, UserID: 2, Rating: 1}), ErrConflict)
	reviews, _ := s.ListReviews(ctx, 1)
	assert.Len(t, reviews, 1)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)
	a := models.AdvertRequest{OwnerID: 1, ProductID: 1, Days: 3, Status: models.AdvertPending}
	require.NoError(t, s.CreateAdvert(ctx, &a))

	active, _ := s.ListActiveAdverts(ctx, start)
	assert.Empty(t, active)

	a.Status, a.StartsAt, a.EndsAt = models.AdvertApproved, &start, &end
	require.NoError(t, s.UpdateAdvert(ctx, &a))
	active, _ = s.ListActiveAdverts(ctx, start.Add(time.Hour))
	assert.Len(t, active, 1)

	pending, _ := s.ListAdverts(ctx, AdvertFilter{Status: models.AdvertPending})
	assert.Empty(t, pending)
	mine, _ := s.ListAdverts(ctx, AdvertFilter{OwnerID: 1})
	assert.Len(t, mine, 1)
}
