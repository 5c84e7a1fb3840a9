// internal/models/token.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persistent half of a session. The opaque token value is
// rotated on every refresh; expired rows are pruned on use.
type RefreshToken struct {
	BaseModel
	Token     string    `json:"-" gorm:"uniqueIndex;size:64;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (t *RefreshToken) Expired() bool {
	return t.ExpiresAt.Before(time.Now())
}
