// Package handlers serves the marketplace REST API with gin.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bakeryapi/apperr"
	"bakeryapi/auth"
	"bakeryapi/events"
	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Options are the handler settings that come from configuration.
type Options struct {
	FrontendURL     string
	WebhookSecret   string
	AdvertDailyRate decimal.Decimal
	ResetTokenTTL   time.Duration
	LoginPerMinute  int
	LoginBurst      int
}

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	store     store.Store
	events    events.Publisher
	tokens    *auth.TokenManager
	passwords auth.Hasher
	oauth     auth.OAuthProvider // nil when Google sign-in is not configured
	log       logrus.FieldLogger
	opts      Options
	limiter   *middleware.IPRateLimiter
	now       func() time.Time
}

// NewHandler wires a Handler. oauth may be nil.
func NewHandler(s store.Store, pub events.Publisher, tokens *auth.TokenManager, passwords auth.Hasher,
	oauth auth.OAuthProvider, log logrus.FieldLogger, opts Options) *Handler {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if opts.LoginPerMinute <= 0 {
		opts.LoginPerMinute = 10
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}
	return &Handler{
		store:     s,
		events:    pub,
		tokens:    tokens,
		passwords: passwords,
		oauth:     oauth,
		log:       log,
		opts:      opts,
		limiter:   middleware.NewIPRateLimiter(opts.LoginPerMinute, opts.LoginBurst),
		now:       time.Now,
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw...)
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes attaches the API routes to r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health-check", h.CheckConnection)

	// Public routes (no authentication required)
	public := r.Group("/")
	{
		public.POST("/auth/register", h.RegisterUser)
		public.POST("/auth/register/validate", h.ValidateRegisterStep)
		public.POST("/auth/login", middleware.RateLimit(h.limiter), h.LoginUser)
		public.POST("/auth/forgot-password", middleware.RateLimit(h.limiter), h.ForgotPassword)
		public.POST("/auth/reset-password", h.ResetPassword)
		public.GET("/auth/google", h.GoogleLogin)
		public.GET("/auth/google/callback", h.GoogleCallback)

		public.GET("/products", h.GetAllProducts)
		public.GET("/products/:id", h.GetProduct)
		public.GET("/categories", h.GetCategories)
		public.GET("/reviews/products/:id", h.GetReviews)
		public.GET("/adverts/active", h.GetActiveAdverts)
	}

	// Protected routes (authentication required)
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(h.tokens))
	{
		authed.GET("/auth/me", h.Me)

		// Cart routes
		authed.GET("/carts", h.GetCart)
		authed.POST("/carts/entries", h.AddToCart)
		authed.PUT("/carts/products/:productId", h.SetCartQuantity)
		authed.DELETE("/carts/entries/:id", h.RemoveCartEntry)
		authed.DELETE("/carts/products/:productId", h.RemoveCartProduct)
		authed.DELETE("/carts", h.ClearCart)

		// Order routes
		authed.POST("/orders/checkout", h.Checkout)
		authed.GET("/orders", h.GetOrders)
		authed.GET("/orders/:id", h.GetOrderDetails)
		authed.POST("/orders/:id/cancel", h.CancelOrder)
		authed.POST("/orders/:id/payment", h.SubmitPayment)

		// Delivery address routes
		authed.GET("/addresses", h.GetAddresses)
		authed.GET("/addresses/:id", h.GetAddress)
		authed.POST("/addresses", h.CreateAddress)
		authed.PUT("/addresses/:id", h.UpdateAddress)
		authed.DELETE("/addresses/:id", h.DeleteAddress)

		authed.POST("/reviews/products/:id", h.CreateReview)
	}

	// Bakery owner routes
	owner := r.Group("/owners")
	owner.Use(middleware.AuthMiddleware(h.tokens), middleware.OwnerRequired())
	{
		owner.GET("/products", h.GetOwnerProducts)
		owner.POST("/products", h.CreateProduct)
		owner.PUT("/products/:id", h.UpdateProduct)
		owner.DELETE("/products/:id", h.DeleteProduct)

		owner.GET("/orders", h.GetOwnerOrders)
		owner.PUT("/orders/:id/status", h.UpdateOwnerOrderStatus)
		owner.PUT("/orders/:id/payment", h.ReviewPayment)

		owner.POST("/adverts", h.CreateAdvert)
		owner.GET("/adverts", h.GetOwnerAdverts)
	}

	// Admin-only routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.tokens), middleware.AdminRequired())
	{
		admin.GET("/orders", h.GetAllOrders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)

		admin.POST("/users", h.CreateAdmin)
		admin.GET("/users", h.GetUsers)

		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)

		admin.GET("/adverts", h.GetAdverts)
		admin.PUT("/adverts/:id", h.DecideAdvert)
	}

	// Webhook routes (called by external services)
	r.POST("/webhooks/payment", h.PaymentWebhook)
}

// CheckConnection reports whether the database answers.
func (h *Handler) CheckConnection(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.WithError(err).Error("health check")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Database connection failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

// respondError writes err as {"error": ...}. Internal errors are logged and
// answered with internalMsg so no cause leaks to the client.
func (h *Handler) respondError(c *gin.Context, err error, internalMsg string) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		_ = c.Error(err)
		h.log.WithError(err).WithFields(logrus.Fields{
			"path":    c.FullPath(),
			"user_id": middleware.UserID(c),
		}).Error(internalMsg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": internalMsg})
		return
	}
	c.JSON(apperr.HTTPStatus(kind), gin.H{"error": apperr.UserMessage(err)})
}

// respondStoreError is respondError with the store sentinels reworded for
// the record in question.
func (h *Handler) respondStoreError(c *gin.Context, err error, subject, internalMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": subject + " not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": subject + " already exists"})
	default:
		h.respondError(c, err, internalMsg)
	}
}

// idParam parses a numeric path parameter. It writes the 400 itself.
func idParam(c *gin.Context, name, subject string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + subject + " ID"})
		return 0, false
	}
	return uint(id), true
}

// publish sends an order event. Failures are logged, not returned: the
// order change is already committed.
func (h *Handler) publish(ctx context.Context, t events.Type, o models.Order) {
	if err := h.events.Publish(ctx, events.NewOrderEvent(t, o, h.now())); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"type":         t,
			"order_number": o.OrderNumber,
		}).Warn("publish order event")
	}
}
