// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "storefront", cfg.Database.Database)
	assert.Equal(t, 24, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, 168, cfg.JWT.RefreshTokenTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 10, cfg.RateLimit.PublicPerSecond)
	assert.Equal(t, 5, cfg.RateLimit.AuthPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.UploadPerMinute)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_NAME", "storefront_test")
	t.Setenv("JWT_ACCESS_TTL", "1")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "storefront_test", cfg.Database.Database)
	assert.Equal(t, 1, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: "your-secret-key-change-in-production"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "rotated"
	assert.Error(t, cfg.Validate()) // still missing the database password

	cfg.Database.Password = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		Database: "storefront", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=storefront sslmode=disable",
		d.DSN())
}
