// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	SellerID    uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	CategoryID  uuid.UUID      `json:"category_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:100;not null"`
	Description string         `json:"description" gorm:"size:500"`
	Price       float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	Status      ProductStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
	Rating      float64        `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount int64          `json:"review_count" gorm:"default:0"`

	// Relationships
	Seller   User     `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Category Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Reviews  []Review `json:"reviews,omitempty" gorm:"foreignKey:ProductID"`
}
