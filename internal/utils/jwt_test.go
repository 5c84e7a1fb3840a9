// internal/utils/jwt_test.go
package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "alice", "seller", 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "seller", claims.UserType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID, "access tokens carry a jti for revocation")
}

func TestValidateJWTRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, err := GenerateJWT(uuid.New(), "bob", "buyer", 1)
	require.NoError(t, err)

	SetJWTSecret("secret-b")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsExpired(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateJWT(uuid.New(), "carol", "buyer", -1)
	require.NoError(t, err)

	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	SetJWTSecret("test-secret")
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestTokenIDsAreUnique(t *testing.T) {
	SetJWTSecret("test-secret")
	userID := uuid.New()

	t1, err := GenerateJWT(userID, "dave", "buyer", 1)
	require.NoError(t, err)
	t2, err := GenerateJWT(userID, "dave", "buyer", 1)
	require.NoError(t, err)

	c1, err := ValidateJWT(t1)
	require.NoError(t, err)
	c2, err := ValidateJWT(t2)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
}
