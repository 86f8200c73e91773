package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"bakeryapi/models"
	"bakeryapi/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

// GoogleLogin redirects the browser to Google's consent screen.
func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in is not available"})
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/auth/google", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

// GoogleCallback finishes the redirect flow and hands the storefront a JWT
// on its oauth-success page.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.oauth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google sign-in is not available"})
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		h.oauthFailed(c, "invalid_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/auth/google", "", c.Request.TLS != nil, true)

	if c.Query("error") != "" {
		h.oauthFailed(c, "access_denied")
		return
	}

	ctx := c.Request.Context()
	profile, err := h.oauth.Exchange(ctx, c.Query("code"))
	if err != nil {
		h.log.WithError(err).Warn("google exchange")
		h.oauthFailed(c, "exchange_failed")
		return
	}

	user, err := h.store.GetUserByEmail(ctx, profile.Email)
	if errors.Is(err, store.ErrNotFound) {
		user = models.User{
			Name:     profile.Name,
			Email:    profile.Email,
			Role:     models.RoleCustomer,
			Provider: models.ProviderGoogle,
		}
		if user.Name == "" {
			user.Name = profile.Email
		}
		err = h.store.CreateUser(ctx, &user)
	}
	if err != nil {
		h.log.WithError(err).Error("google sign-in user")
		h.oauthFailed(c, "server_error")
		return
	}

	token, err := h.tokens.GenerateJWT(user.ID, user.Role)
	if err != nil {
		h.log.WithError(err).Error("generate token")
		h.oauthFailed(c, "server_error")
		return
	}

	c.Redirect(http.StatusFound, h.opts.FrontendURL+"/oauth-success?token="+url.QueryEscape(token))
}

func (h *Handler) oauthFailed(c *gin.Context, reason string) {
	c.Redirect(http.StatusFound, h.opts.FrontendURL+"/login?error="+url.QueryEscape(reason))
}
