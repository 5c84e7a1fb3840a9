// internal/handlers/auth_test.go
package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLogoutRejectsMissingRefreshToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(nil)

	r := gin.New()
	r.POST("/logout", h.Logout)

	// Validation runs before any session lookup, so an empty refresh token
	// gets the validation envelope instead of silently no-opping.
	req, _ := http.NewRequest("POST", "/logout", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), "required")
}
