// Package client is a typed Go client for the bakery API. It carries the
// session (token, theme, language) and re-merges the cart on every fetch so
// callers always see one line per product.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bakeryapi/apperr"
	"bakeryapi/cart"
	"bakeryapi/models"
	"bakeryapi/orders"
)

// DefaultTimeout bounds every request when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Options tune a Client.
type Options struct {
	// Timeout for each request. Ignored when HTTPClient is set.
	Timeout time.Duration
	// HTTPClient replaces the default client.
	HTTPClient *http.Client
	// Store persists the session after sign-in and sign-out. Optional.
	Store SessionStore
}

// Client calls the API on behalf of one session.
type Client struct {
	base    string
	http    *http.Client
	session *Session
	store   SessionStore
}

// New creates a Client. A nil session starts signed out.
func New(baseURL string, session *Session, opts Options) *Client {
	if session == nil {
		session = NewSession()
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    hc,
		session: session,
		store:   opts.Store,
	}
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session { return c.session }

// Cart is the merged cart as shown to the user.
type Cart struct {
	Lines   []cart.Line
	Summary cart.Summary
}

// Login signs in with email and password and keeps the token.
func (c *Client) Login(ctx context.Context, email, password string) (models.User, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", models.UserLogin{Email: email, Password: password}, &resp)
	if err != nil {
		return models.User{}, err
	}
	return resp.User, c.signIn(resp.Token)
}

// Register creates an account and signs in with it.
func (c *Client) Register(ctx context.Context, in models.UserRegister) (models.User, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &resp); err != nil {
		return models.User{}, err
	}
	return resp.User, c.signIn(resp.Token)
}

// CompleteOAuth takes the token from the oauth-success redirect.
func (c *Client) CompleteOAuth(rawURL string) error {
	token, err := TokenFromRedirect(rawURL)
	if err != nil {
		return err
	}
	return c.signIn(token)
}

// Logout forgets the token.
func (c *Client) Logout() error {
	c.session.SignOut()
	return c.persist()
}

func (c *Client) signIn(token string) error {
	c.session.SetToken(token)
	return c.persist()
}

func (c *Client) persist() error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(c.session)
}

// TokenFromRedirect extracts the token query parameter of the
// oauth-success page URL.
func TokenFromRedirect(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse redirect: %w", err)
	}
	token := strings.TrimSpace(u.Query().Get("token"))
	if token == "" {
		return "", apperr.E(apperr.Unauthorized, "sign-in did not return a token")
	}
	return token, nil
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp)
	return resp.User, err
}

// Products lists the storefront with optional catalog selectors
// (search, category, min_price, max_price, in_stock, sort).
func (c *Client) Products(ctx context.Context, query url.Values) ([]models.Product, error) {
	path := "/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var resp struct {
		Products []models.Product `json:"products"`
	}
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.Products, err
}

// Cart fetches the raw entries and merges them locally.
func (c *Client) Cart(ctx context.Context) (Cart, error) {
	return c.cartCall(ctx, http.MethodGet, "/carts", nil)
}

// AddToCart records an add-to-cart action.
func (c *Client) AddToCart(ctx context.Context, productID uint, qty int) (Cart, error) {
	return c.cartCall(ctx, http.MethodPost, "/carts/entries", models.CartEntryInput{ProductID: productID, Quantity: qty})
}

// SetQuantity sets the merged quantity of a product. Zero removes it.
func (c *Client) SetQuantity(ctx context.Context, productID uint, qty int) (Cart, error) {
	return c.cartCall(ctx, http.MethodPut, "/carts/products/"+models.FormatID(productID), models.CartQuantityInput{Quantity: &qty})
}

// RemoveFromCart drops a product's line.
func (c *Client) RemoveFromCart(ctx context.Context, productID uint) (Cart, error) {
	return c.cartCall(ctx, http.MethodDelete, "/carts/products/"+models.FormatID(productID), nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/carts", nil, nil)
}

// ImportCart replays a cart saved by an older app version into the server
// cart. Duplicate entries are merged first; lines whose product id is not
// numeric or whose quantity is zero are skipped. Lines are added one at a
// time with no rollback: on error the returned Cart holds what the server
// had accepted so far.
func (c *Client) ImportCart(ctx context.Context, saved []map[string]any) (Cart, error) {
	current, err := c.Cart(ctx)
	if err != nil {
		return Cart{}, err
	}
	for _, line := range cart.Merge(cart.EntriesFromRaw(saved)) {
		id, err := strconv.ParseUint(line.Key, 10, 64)
		if err != nil || id == 0 || line.Quantity <= 0 {
			continue
		}
		next, err := c.AddToCart(ctx, uint(id), line.Quantity)
		if err != nil {
			return current, fmt.Errorf("import product %s: %w", line.Key, err)
		}
		current = next
	}
	return current, nil
}

// cartCall decodes the typed entries and merges them here, so lines stay
// one per product even against servers that return unmerged entries.
func (c *Client) cartCall(ctx context.Context, method, path string, in any) (Cart, error) {
	var resp struct {
		Cart struct {
			Entries []models.CartEntry `json:"entries"`
		} `json:"cart"`
	}
	if err := c.do(ctx, method, path, in, &resp); err != nil {
		return Cart{}, err
	}
	lines := cart.Merge(models.RawEntries(resp.Cart.Entries))
	return Cart{Lines: lines, Summary: cart.Totals(lines)}, nil
}

// Checkout places one order per bakery from the cart.
func (c *Client) Checkout(ctx context.Context, in models.CheckoutInput) ([]models.Order, error) {
	var resp struct {
		Orders []models.Order `json:"orders"`
	}
	err := c.do(ctx, http.MethodPost, "/orders/checkout", in, &resp)
	return resp.Orders, err
}

// Orders lists the user's orders under tab with per-tab counts. An empty
// tab returns every order.
func (c *Client) Orders(ctx context.Context, tab orders.Tab) (models.OrderList, error) {
	path := "/orders"
	if tab != "" {
		path += "?tab=" + url.QueryEscape(string(tab))
	}
	var list models.OrderList
	err := c.do(ctx, http.MethodGet, path, nil, &list)
	return list, err
}

// Order fetches one order.
func (c *Client) Order(ctx context.Context, id uint) (models.Order, error) {
	return c.orderCall(ctx, http.MethodGet, "/orders/"+models.FormatID(id), nil)
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, id uint) (models.Order, error) {
	return c.orderCall(ctx, http.MethodPost, "/orders/"+models.FormatID(id)+"/cancel", nil)
}

// SubmitPayment attaches a transfer reference or slip URL to an order.
func (c *Client) SubmitPayment(ctx context.Context, id uint, reference string) (models.Order, error) {
	return c.orderCall(ctx, http.MethodPost, "/orders/"+models.FormatID(id)+"/payment", models.PaymentProofInput{Reference: reference})
}

func (c *Client) orderCall(ctx context.Context, method, path string, in any) (models.Order, error) {
	var resp struct {
		Order models.Order `json:"order"`
	}
	err := c.do(ctx, method, path, in, &resp)
	return resp.Order, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if lang := c.session.Language(); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return apperr.Wrap(apperr.Unavailable, "could not reach the server", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	ae := &APIError{Status: resp.StatusCode, Kind: apperr.KindFromStatus(resp.StatusCode)}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
		ae.Message = payload.Error
		if ae.Message == "" {
			ae.Message = payload.Message
		}
	}
	return ae
}
