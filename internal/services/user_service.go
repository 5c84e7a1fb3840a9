// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsquare/storefront/internal/models"
	"github.com/marketsquare/storefront/internal/policy"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetProfile returns the account record for the caller. Profiles are
// only readable by their owner.
func (s *UserService) GetProfile(caller policy.Caller, id uuid.UUID) (*models.User, error) {
	if decision := policy.Evaluate(caller, policy.ActionRead, policy.ResourceUser, policy.Owned(id)); !decision.Allowed {
		return nil, &PolicyError{Decision: decision}
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}
