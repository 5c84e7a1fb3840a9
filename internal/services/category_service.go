// internal/services/category_service.go
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

type CategoryService struct {
	db *gorm.DB
}

type CreateCategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=50"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

type UpdateCategoryRequest struct {
	Name     string     `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	IsActive *bool      `json:"is_active,omitempty"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) ListCategories(params utils.PaginationParams) ([]models.Category, int64, error) {
	query := s.db.Model(&models.Category{}).Where("is_active = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name"})
	query = utils.ApplyPagination(query, params)

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, total, nil
}

// ListCategoryProducts returns the active products of an active category.
func (s *CategoryService) ListCategoryProducts(categoryID uuid.UUID, params utils.PaginationParams) ([]models.Product, int64, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND is_active = ?", categoryID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, errors.New("category not found")
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query := s.db.Model(&models.Product{}).
		Where("category_id = ? AND status = ?", categoryID, models.ProductStatusActive)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "price", "rating"})
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Preload("Category").Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *CategoryService) CreateCategory(caller policy.Caller, req *CreateCategoryRequest) (*models.Category, error) {
	if decision := policy.Evaluate(caller, policy.ActionCreate, policy.ResourceCategory, nil); !decision.Allowed {
		return nil, &PolicyError{Decision: decision}
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// A new category may be nested; its parent must exist and be active.
	if req.ParentID != nil {
		if err := s.requireActiveCategory(*req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:     req.Name,
		IsActive: true,
		ParentID: req.ParentID,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

func (s *CategoryService) UpdateCategory(caller policy.Caller, id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if decision := policy.Evaluate(caller, policy.ActionUpdate, policy.ResourceCategory, nil); !decision.Allowed {
		return nil, &PolicyError{Decision: decision}
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var category models.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("category not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, errors.New("category cannot be its own parent")
		}
		if err := s.requireActiveCategory(*req.ParentID); err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ParentID != nil {
		updates["parent_id"] = *req.ParentID
	}

	if len(updates) > 0 {
		if err := s.db.Model(&category).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}

	return &category, nil
}

func (s *CategoryService) requireActiveCategory(id uuid.UUID) error {
	var category models.Category
	if err := s.db.Where("id = ? AND is_active = ?", id, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("parent category not found or inactive")
		}
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}
