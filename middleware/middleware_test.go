package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bakeryapi/auth"
	"bakeryapi/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(tokens *auth.TokenManager, gates ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(tokens)}, gates...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c), "role": Role(c)})
	})
	r.GET("/private", handlers...)
	return r
}

func get(r http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := protectedRouter(tokens)

	token, err := tokens.GenerateJWT(12, models.RoleCustomer)
	require.NoError(t, err)

	w := get(r, "/private", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":12,"role":"customer"}`, w.Body.String())

	tests := []struct {
		name, header, want string
	}{
		{"missing header", "", "authorization header required"},
		{"wrong scheme", "Basic abc", "invalid token format"},
		{"empty bearer", "Bearer ", "invalid token format"},
		{"bad token", "Bearer nope", "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/private", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
		})
	}
}

func TestRoleRequired(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	r := protectedRouter(tokens, AdminRequired())

	customer, _ := tokens.GenerateJWT(1, models.RoleCustomer)
	admin, _ := tokens.GenerateJWT(2, models.RoleAdmin)

	w := get(r, "/private", "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"admin privileges required"}`, w.Body.String())

	assert.Equal(t, http.StatusOK, get(r, "/private", "Bearer "+admin).Code)

	multi := protectedRouter(tokens, RoleRequired(models.RoleOwner, models.RoleAdmin))
	w = get(multi, "/private", "Bearer "+customer)
	assert.JSONEq(t, `{"error":"insufficient privileges"}`, w.Body.String())
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://shop.example"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(60, 2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"), "burst exhausted")
	assert.True(t, l.Allow("2.2.2.2"), "buckets are per ip")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.1.1.1"), "one token refills per second")

	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("3.3.3.3")
	assert.Len(t, l.visitors, 1, "idle visitors are evicted")
}

func TestIPRateLimiterSweepsOnInterval(t *testing.T) {
	l := NewIPRateLimiter(60, 1)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("1.1.1.1")
	swept := l.lastSweep

	now = now.Add(limiterSweepInterval / 2)
	l.Allow("2.2.2.2")
	assert.Equal(t, swept, l.lastSweep, "no sweep inside the interval")

	now = now.Add(limiterIdleTTL)
	l.visitors["2.2.2.2"].lastSeen = now
	l.Allow("2.2.2.2")
	assert.Equal(t, now, l.lastSweep)
	assert.Len(t, l.visitors, 1)
	assert.Contains(t, l.visitors, "2.2.2.2")
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(NewIPRateLimiter(1, 1)), func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		return w.Code
	}
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	get(r, "/items/3", "")

	require.Len(t, hook.AllEntries(), 1)
	e := hook.LastEntry()
	assert.Equal(t, "/items/:id", e.Data["path"])
	assert.Equal(t, http.StatusNotFound, e.Data["status"])
	assert.Equal(t, "warning", e.Level.String())
}
