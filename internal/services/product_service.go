// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketsquare/storefront/internal/models"
	"github.com/marketsquare/storefront/internal/policy"
	"github.com/marketsquare/storefront/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required,min=1,max=100"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       float64   `json:"price" validate:"required,price"`
	Images      []string  `json:"images,omitempty"`
}

type UpdateProductRequest struct {
	CategoryID  *uuid.UUID           `json:"category_id,omitempty"`
	Name        string               `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description string               `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       float64              `json:"price,omitempty" validate:"omitempty,price"`
	Images      []string             `json:"images,omitempty"`
	Status      models.ProductStatus `json:"status,omitempty"`
}

type ProductListParams struct {
	utils.PaginationParams
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) ListProducts(params ProductListParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Preload("Category").Preload("Seller")

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "updated_at", "name", "price", "rating"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *ProductService) GetProduct(id uuid.UUID, viewer policy.Caller) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Category").Preload("Seller").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Non-active products are visible only to their seller.
	if product.Status != models.ProductStatusActive {
		if !viewer.Authenticated || viewer.UserID != product.SellerID {
			return nil, errors.New("product not found")
		}
	}

	return &product, nil
}

func (s *ProductService) CreateProduct(caller policy.Caller, req *CreateProductRequest) (*models.Product, error) {
	if decision := policy.Evaluate(caller, policy.ActionCreate, policy.ResourceProduct, nil); !decision.Allowed {
		return nil, &PolicyError{Decision: decision}
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Verify seller exists and is active
	var seller models.User
	if err := s.db.First(&seller, caller.UserID).Error; err != nil {
		return nil, fmt.Errorf("seller not found: %w", err)
	}
	if seller.Status != models.UserStatusActive {
		return nil, errors.New("seller account is not active")
	}

	// The category must exist and be active
	var category models.Category
	if err := s.db.Where("id = ? AND is_active = ?", req.CategoryID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found or inactive")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	product := &models.Product{
		SellerID:    caller.UserID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
		Status:      models.ProductStatusActive,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.db.Preload("Category").Preload("Seller").First(product, product.ID)

	return product, nil
}

func (s *ProductService) UpdateProduct(caller policy.Caller, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Ownership check against the loaded instance. The seller id itself is
	// never part of the update set; ownership is immutable after create.
	if decision := policy.Evaluate(caller, policy.ActionUpdate, policy.ResourceProduct, policy.Owned(product.SellerID)); !decision.Allowed {
		return nil, &PolicyError{Decision: decision}
	}

	if req.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND is_active = ?", *req.CategoryID, true).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.New("category not found or inactive")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	updates := make(map[string]interface{})
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price > 0 {
		updates["price"] = req.Price
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.Status != "" {
		updates["status"] = req.Status
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	s.db.Preload("Category").Preload("Seller").First(&product, id)

	return &product, nil
}

func (s *ProductService) DeleteProduct(caller policy.Caller, id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if decision := policy.Evaluate(caller, policy.ActionDelete, policy.ResourceProduct, policy.Owned(product.SellerID)); !decision.Allowed {
		return &PolicyError{Decision: decision}
	}

	// Soft delete
	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
