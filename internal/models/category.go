// internal/models/category.go
package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name     string     `json:"name" gorm:"size:50;not null"`
	IsActive bool       `json:"is_active" gorm:"default:true;index"`
	ParentID *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`

	// Relationships
	Parent   *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	Products []Product  `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}
