// internal/middleware/auth_test.go
package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketsquare/storefront/internal/models"
	"github.com/marketsquare/storefront/internal/policy"
	"github.com/marketsquare/storefront/internal/utils"
)

type stubRevoker struct {
	revoked map[string]bool
}

func (s *stubRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], nil
}

func newAuthRouter(revoker TokenRevoker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(revoker), func(c *gin.Context) {
		userID, _ := utils.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	r := newAuthRouter(nil)
	w := doGet(r, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	r := newAuthRouter(nil)
	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredValidToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	token, err := utils.GenerateJWT(uuid.New(), "alice", "seller", 1)
	require.NoError(t, err)

	r := newAuthRouter(&stubRevoker{revoked: map[string]bool{}})
	w := doGet(r, "/protected", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequiredRevokedToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	token, err := utils.GenerateJWT(uuid.New(), "alice", "seller", 1)
	require.NoError(t, err)

	claims, err := utils.ValidateJWT(token)
	require.NoError(t, err)

	r := newAuthRouter(&stubRevoker{revoked: map[string]bool{claims.ID: true}})
	w := doGet(r, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredRejectsTokenWithoutExpiry(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")

	// A validly-signed token missing the exp claim must be rejected, not
	// treated as never-expiring.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":   uuid.NewString(),
		"username":  "alice",
		"user_type": "seller",
		"jti":       uuid.NewString(),
	})
	signed, err := token.SignedString([]byte("middleware-test-secret"))
	require.NoError(t, err)

	r := newAuthRouter(&stubRevoker{revoked: map[string]bool{}})
	w := doGet(r, "/protected", signed)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthPassesAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/open", OptionalAuth(nil), func(c *gin.Context) {
		caller := CallerFromContext(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": caller.Authenticated})
	})

	w := doGet(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestAuthorizeDeniesByTier(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/products",
		AuthRequired(nil),
		Authorize(policy.ActionCreate, policy.ResourceProduct),
		func(c *gin.Context) { c.Status(http.StatusCreated) },
	)

	buyerToken, err := utils.GenerateJWT(uuid.New(), "bob", string(models.UserTypeBuyer), 1)
	require.NoError(t, err)
	sellerToken, err := utils.GenerateJWT(uuid.New(), "sue", string(models.UserTypeSeller), 1)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", "/products", nil)
	req.Header.Set("Authorization", "Bearer "+buyerToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req, _ = http.NewRequest("POST", "/products", nil)
	req.Header.Set("Authorization", "Bearer "+sellerToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuthorizeAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/me",
		OptionalAuth(nil),
		Authorize(policy.ActionRead, policy.ResourceUser),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := doGet(r, "/users/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
