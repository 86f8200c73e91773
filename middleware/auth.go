package middleware

import (
	"net/http"
	"slices"
	"strings"

	"bakeryapi/auth"
	"bakeryapi/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// TokenValidator is satisfied by *auth.TokenManager.
type TokenValidator interface {
	ValidateToken(signedToken string) (*auth.JWTClaim, error)
}

// AuthMiddleware handles authentication check
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		// Extract token from "Bearer <token>"
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token format"})
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		// Set user ID and role in context
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RoleRequired lets the request through only for the given roles.
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		r, _ := role.(models.Role)
		if !slices.Contains(roles, r) {
			msg := "insufficient privileges"
			if len(roles) == 1 {
				msg = string(roles[0]) + " privileges required"
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msg})
			return
		}

		c.Next()
	}
}

// AdminRequired ensures user has admin role
func AdminRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleAdmin)
}

// OwnerRequired ensures user has the bakery owner role
func OwnerRequired() gin.HandlerFunc {
	return RoleRequired(models.RoleOwner)
}

// UserID returns the authenticated user's id, or 0.
func UserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// Role returns the authenticated user's role.
func Role(c *gin.Context) models.Role {
	r, _ := c.Get(ctxRole)
	role, _ := r.(models.Role)
	return role
}
