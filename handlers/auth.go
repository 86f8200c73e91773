package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bakeryapi/middleware"
	"bakeryapi/models"
	"bakeryapi/signup"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterUser creates a customer or bakery owner account
func (h *Handler) RegisterUser(c *gin.Context) {
	var input models.UserRegister
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input = signup.Normalize(input)
	if err := signup.Validate(input); err != nil {
		writeFieldErrors(c, err)
		return
	}

	user, err := h.createUser(c, input, models.Role(input.Role))
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
			return
		}
		h.respondError(c, err, "failed to create user")
		return
	}

	h.issueToken(c, http.StatusCreated, user)
}

// ValidateRegisterStep checks one wizard step so the form can advance.
func (h *Handler) ValidateRegisterStep(c *gin.Context) {
	step, err := strconv.Atoi(c.DefaultQuery("step", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step"})
		return
	}

	var input models.UserRegister
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input = signup.Normalize(input)

	if err := signup.ValidateStep(signup.Step(step), input); err != nil {
		writeFieldErrors(c, err)
		return
	}

	steps := signup.Steps(input.Role)
	next := 0
	for i, s := range steps {
		if int(s) == step && i+1 < len(steps) {
			next = int(steps[i+1])
		}
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "next_step": next})
}

// writeFieldErrors answers a wizard validation failure with the offending
// fields so the form can highlight them.
func writeFieldErrors(c *gin.Context, err error) {
	var fe *signup.FieldErrors
	if errors.As(err, &fe) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  fe.Error(),
			"step":   fe.Step,
			"fields": fe.Fields,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *Handler) createUser(c *gin.Context, input models.UserRegister, role models.Role) (models.User, error) {
	hashed, err := h.passwords.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: hashed,
		Role:     role,
		Phone:    input.Phone,
		Address:  input.Address,
		Provider: models.ProviderLocal,
	}
	if role == models.RoleOwner {
		user.BakeryName = input.BakeryName
	}
	if err := h.store.CreateUser(c.Request.Context(), &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (h *Handler) issueToken(c *gin.Context, status int, user models.User) {
	token, err := h.tokens.GenerateJWT(user.ID, user.Role)
	if err != nil {
		h.respondError(c, err, "failed to generate token")
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: user})
}

// LoginUser authenticates a user and returns JWT token
func (h *Handler) LoginUser(c *gin.Context) {
	var input models.UserLogin
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.respondError(c, err, "database error")
		return
	}

	if !h.passwords.Check(user.Password, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

// Me returns the signed-in account
func (h *Handler) Me(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.respondStoreError(c, err, "user", "failed to get user information")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// CreateAdmin creates an admin account (only callable by another admin)
func (h *Handler) CreateAdmin(c *gin.Context) {
	var input models.UserRegister
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input = signup.Normalize(input)
	if err := signup.ValidateStep(signup.StepAccount, input); err != nil {
		writeFieldErrors(c, err)
		return
	}

	user, err := h.createUser(c, input, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
			return
		}
		h.respondError(c, err, "failed to create admin")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "admin created successfully",
		"user":    user,
	})
}

// GetUsers lists accounts, optionally by ?role=
func (h *Handler) GetUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	switch role {
	case "", models.RoleCustomer, models.RoleOwner, models.RoleAdmin:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	users, err := h.store.ListUsers(c.Request.Context(), role)
	if err != nil {
		h.respondError(c, err, "failed to fetch users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ForgotPassword issues a reset token. The response is the same whether or
// not the email is registered.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var input models.ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	const msg = "if the email is registered, a reset link has been sent"
	ctx := c.Request.Context()

	user, err := h.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"message": msg})
		return
	}
	if err != nil {
		h.respondError(c, err, "failed to start password reset")
		return
	}

	reset := models.PasswordReset{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: h.now().Add(h.opts.ResetTokenTTL),
	}
	if err := h.store.CreatePasswordReset(ctx, &reset); err != nil {
		h.respondError(c, err, "failed to start password reset")
		return
	}

	// Mail delivery is outside this service; the link is logged for the
	// mailer sidecar to pick up.
	h.log.WithField("user_id", user.ID).
		WithField("reset_url", h.opts.FrontendURL+"/reset-password?token="+reset.Token).
		Info("password reset requested")

	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ResetPassword sets a new password with a reset token
func (h *Handler) ResetPassword(c *gin.Context) {
	var input models.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := h.passwords.Hash(input.Password)
	if err != nil {
		h.respondError(c, err, "failed to process password")
		return
	}

	if err := h.store.ResetPassword(c.Request.Context(), input.Token, hashed, h.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reset link is invalid or has expired"})
			return
		}
		h.respondError(c, err, "failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
