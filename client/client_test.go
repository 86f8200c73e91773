package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bakeryapi/apperr"
	"bakeryapi/auth"
	"bakeryapi/client"
	"bakeryapi/events"
	"bakeryapi/handlers"
	"bakeryapi/models"
	"bakeryapi/orders"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) (*httptest.Server, models.Product) {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemoryStore()

	owner := models.User{Name: "Baker", Email: "baker@example.com", Role: models.RoleOwner}
	require.NoError(t, s.CreateUser(ctx, &owner))
	bread := models.Product{OwnerID: owner.ID, Name: "Sourdough", Price: decimal.RequireFromString("12.50"), Stock: 10}
	require.NoError(t, s.CreateProduct(ctx, &bread))

	log, _ := test.NewNullLogger()
	h := handlers.NewHandler(s, &events.Recorder{}, auth.NewTokenManager("client-test-secret", time.Hour),
		auth.NewHasher(bcrypt.MinCost), nil, log, handlers.Options{FrontendURL: "http://shop.test"})

	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, bread
}

func register(t *testing.T, c *client.Client) {
	t.Helper()
	_, err := c.Register(context.Background(), models.UserRegister{
		Name: "Ploy", Email: "ploy@example.com", Password: "sourdough1",
		ConfirmPassword: "sourdough1", Role: "customer",
	})
	require.NoError(t, err)
}

func TestClientCartAndOrders(t *testing.T) {
	srv, bread := newServer(t)
	ctx := context.Background()
	sessions := &client.MemorySessionStore{}
	c := client.New(srv.URL, nil, client.Options{Store: sessions})

	register(t, c)
	assert.True(t, c.Session().SignedIn())
	saved, err := sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, c.Session().Token(), saved.Token())

	_, err = c.AddToCart(ctx, bread.ID, 1)
	require.NoError(t, err)
	got, err := c.AddToCart(ctx, bread.ID, 1)
	require.NoError(t, err)

	require.Len(t, got.Lines, 1)
	assert.Equal(t, 2, got.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("25").Equal(got.Summary.Amount), got.Summary.Amount.String())

	got, err = c.SetQuantity(ctx, bread.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Summary.Items)

	placed, err := c.Checkout(ctx, models.CheckoutInput{Address: &models.DeliveryAddressInput{
		RecipientName: "Ploy", Phone: "0812345678", Line1: "1 Bread St", City: "Bangkok", PostalCode: "10110",
	}})
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.True(t, decimal.RequireFromString("37.5").Equal(placed[0].TotalAmount))

	got, err = c.Cart(ctx)
	require.NoError(t, err)
	assert.True(t, got.Summary.Empty())

	list, err := c.Orders(ctx, orders.TabPending)
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, 1, list.Counts[orders.TabPending])

	cancelled, err := c.CancelOrder(ctx, placed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)

	_, err = c.CancelOrder(ctx, placed[0].ID)
	require.Error(t, err)
	assert.True(t, client.IsKind(err, apperr.Conflict))
	assert.Equal(t, "only pending orders can be cancelled", client.UserMessage(err))

	list, err = c.Orders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list.Orders, 1)
	assert.Equal(t, 1, list.Counts[orders.TabCancelled])
}

func TestClientErrors(t *testing.T) {
	srv, _ := newServer(t)
	ctx := context.Background()
	c := client.New(srv.URL, nil, client.Options{})

	_, err := c.Cart(ctx)
	var ae *client.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
	assert.Equal(t, apperr.Unauthorized, ae.Kind)

	_, err = c.Login(ctx, "nobody@example.com", "whatever1")
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "invalid credentials", client.UserMessage(err))
	assert.False(t, c.Session().SignedIn())

	register(t, c)
	_, err = c.Checkout(ctx, models.CheckoutInput{})
	assert.True(t, client.IsKind(err, apperr.Invalid))

	_, err = c.Orders(ctx, "shipped")
	assert.Equal(t, "unknown order tab", client.UserMessage(err))

	assert.Equal(t, "something went wrong, please try again",
		client.UserMessage(&client.APIError{Status: 500, Kind: apperr.Internal, Message: "failed to create order"}))

	require.NoError(t, c.Logout())
	assert.False(t, c.Session().SignedIn())
}

func TestClientUnreachable(t *testing.T) {
	c := client.New("http://127.0.0.1:1", nil, client.Options{Timeout: time.Second})
	_, err := c.Products(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.Unavailable, apperr.KindOf(err))
}

func TestTokenFromRedirect(t *testing.T) {
	token, err := client.TokenFromRedirect("http://shop.test/oauth-success?token=abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = client.TokenFromRedirect("http://shop.test/oauth-success")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	c := client.New("http://unused", nil, client.Options{})
	require.NoError(t, c.CompleteOAuth("http://shop.test/oauth-success?token=xyz"))
	assert.Equal(t, "xyz", c.Session().Token())
}

func TestSession(t *testing.T) {
	s := client.NewSession()
	assert.Equal(t, client.ThemeLight, s.Theme())
	assert.Equal(t, client.DefaultLanguage, s.Language())

	assert.Equal(t, client.ThemeDark, s.ToggleTheme())
	assert.Error(t, s.SetTheme("sepia"))
	assert.Error(t, s.SetLanguage("  "))
	require.NoError(t, s.SetLanguage("TH"))
	assert.Equal(t, "th", s.Language())
}

func TestFileSessionStore(t *testing.T) {
	fs := &client.FileSessionStore{Path: filepath.Join(t.TempDir(), "bakery", "session.yaml")}

	fresh, err := fs.Load()
	require.NoError(t, err)
	assert.False(t, fresh.SignedIn())

	s := client.NewSession()
	s.SetToken("tok")
	require.NoError(t, s.SetTheme(client.ThemeDark))
	require.NoError(t, s.SetLanguage("th"))
	require.NoError(t, fs.Save(s))

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token())
	assert.Equal(t, client.ThemeDark, loaded.Theme())
	assert.Equal(t, "th", loaded.Language())
}

func TestImportCart(t *testing.T) {
	srv, bread := newServer(t)
	ctx := context.Background()
	c := client.New(srv.URL, nil, client.Options{})
	register(t, c)

	id := models.FormatID(bread.ID)
	got, err := c.ImportCart(ctx, []map[string]any{
		{"_id": "a", "product": map[string]any{"_id": id, "name": "Sourdough", "price": "12.50"}, "qty": "2"},
		{"_id": "b", "productId": id, "quantity": 1},
		{"_id": "c", "product": "not-a-number", "quantity": 4},
		{"_id": "d", "quantity": 9},
	})
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 3, got.Lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("37.5").Equal(got.Summary.Amount))
}

func TestImportCartStopsAtFirstRejectedLine(t *testing.T) {
	srv, bread := newServer(t)
	ctx := context.Background()
	c := client.New(srv.URL, nil, client.Options{})
	register(t, c)

	got, err := c.ImportCart(ctx, []map[string]any{
		{"productId": models.FormatID(bread.ID), "quantity": "010"},
		{"productId": "999", "quantity": 1},
	})
	require.Error(t, err)
	assert.True(t, client.IsKind(err, apperr.NotFound))
	require.Len(t, got.Lines, 1, "lines accepted before the failure are reported")
	assert.Equal(t, 10, got.Lines[0].Quantity)

	server, err := c.Cart(ctx)
	require.NoError(t, err)
	assert.Equal(t, got.Summary.Items, server.Summary.Items)
	assert.True(t, got.Summary.Amount.Equal(server.Summary.Amount))
}
