// internal/models/review.go
package models

import "github.com/google/uuid"

type Review struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Grade     int       `json:"grade" gorm:"not null"`
	Comment   string    `json:"comment" gorm:"size:500"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`

	// Relationships
	Product  Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Reviewer User    `json:"reviewer,omitempty" gorm:"foreignKey:UserID"`
}
