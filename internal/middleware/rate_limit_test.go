// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/marketsquare/storefront/internal/config"
)

func TestAuthTierLimitsPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limits := NewRateLimits(config.RateLimitConfig{
		PublicPerSecond: 100,
		PublicBurst:     100,
		AuthPerMinute:   2,
		UploadPerMinute: 2,
	})

	r := gin.New()
	r.POST("/token", limits.Auth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(ip string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest("POST", "/token", nil)
		req.RemoteAddr = ip + ":4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do("10.0.0.1").Code)

	w := do("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, do("10.0.0.2").Code)
}

func TestPublicTierAllowsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limits := NewRateLimits(config.RateLimitConfig{
		PublicPerSecond: 1,
		PublicBurst:     5,
		AuthPerMinute:   1,
		UploadPerMinute: 1,
	})

	r := gin.New()
	r.GET("/products", limits.Public(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/products", nil)
		req.RemoteAddr = "10.0.0.3:4000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req, _ := http.NewRequest("GET", "/products", nil)
	req.RemoteAddr = "10.0.0.3:4000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
