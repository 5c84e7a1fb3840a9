// internal/services/session_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsquare/storefront/internal/config"
	"github.com/marketsquare/storefront/internal/models"
	"github.com/marketsquare/storefront/internal/policy"
	"github.com/marketsquare/storefront/internal/utils"
)

// SessionService owns the session lifecycle: persistent refresh tokens with
// rotation-on-use, and a Redis denylist for access tokens revoked by logout.
// Rotation deletes the used token inside the same transaction that creates
// its replacement, so only one refresh can take visible effect per token.
type SessionService struct {
	db    *gorm.DB
	redis *redis.Client
	cfg   *config.Config
}

func NewSessionService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *SessionService {
	return &SessionService{
		db:    db,
		redis: redisClient,
		cfg:   cfg,
	}
}

func (s *SessionService) CreateRefreshToken(userID uuid.UUID) (*models.RefreshToken, error) {
	value, err := utils.GenerateRefreshTokenValue()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	token := &models.RefreshToken{
		Token:     value,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.JWT.RefreshTokenTTL) * time.Hour),
	}

	if err := s.db.Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return token, nil
}

// Rotate exchanges a refresh token for a fresh one. The used token is deleted
// and the caller's other expired tokens are pruned along the way.
func (s *SessionService) Rotate(caller policy.Caller, tokenValue string) (*models.User, *models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := s.db.Preload("User").Where("token = ?", tokenValue).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("invalid or expired refresh token")
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if decision := policy.Evaluate(caller, policy.ActionUpdate, policy.ResourceSession, policy.Owned(stored.UserID)); !decision.Allowed {
		return nil, nil, &PolicyError{Decision: decision}
	}

	if stored.Expired() {
		s.db.Unscoped().Delete(&stored)
		return nil, nil, errors.New("invalid or expired refresh token")
	}

	user := stored.User
	if user.Status != models.UserStatusActive {
		s.db.Unscoped().Delete(&stored)
		return nil, nil, errors.New("account is not active")
	}

	value, err := utils.GenerateRefreshTokenValue()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	replacement := &models.RefreshToken{
		Token:     value,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.JWT.RefreshTokenTTL) * time.Hour),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&models.RefreshToken{}, stored.ID).Error; err != nil {
			return err
		}
		// Prune this user's other expired tokens while we are here.
		if err := tx.Unscoped().
			Where("user_id = ? AND expires_at < ?", user.ID, time.Now()).
			Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return tx.Create(replacement).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return &user, replacement, nil
}

// Revoke removes a refresh token as part of logout. Unknown tokens are not an
// error; logout is idempotent.
func (s *SessionService) Revoke(caller policy.Caller, tokenValue string) error {
	var stored models.RefreshToken
	if err := s.db.Where("token = ?", tokenValue).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("database error: %w", err)
	}

	if decision := policy.Evaluate(caller, policy.ActionDelete, policy.ResourceSession, policy.Owned(stored.UserID)); !decision.Allowed {
		return &PolicyError{Decision: decision}
	}

	if err := s.db.Unscoped().Delete(&stored).Error; err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	return nil
}

const revokedKeyPrefix = "revoked_jti:"

// RevokeAccessToken denylists an access token's jti for the remainder of its
// lifetime. Tokens already past expiry need no entry.
func (s *SessionService) RevokeAccessToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to denylist token: %w", err)
	}
	return nil
}

// IsRevoked implements middleware.TokenRevoker.
func (s *SessionService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	if err := s.redis.Get(ctx, revokedKeyPrefix+jti).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}
