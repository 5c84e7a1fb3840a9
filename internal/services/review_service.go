// internal/services/review_service.go
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

type ReviewService struct {
	db *gorm.DB
}

type CreateReviewRequest struct {
	Grade   int    `json:"grade" validate:"required,grade"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=500"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

func (s *ReviewService) ListProductReviews(productID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	var product models.Product
	if err := s.db.Where("id = ? AND status = ?", productID, models.ProductStatusActive).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, errors.New("product not found")
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query := s.db.Model(&models.Review{}).
		Where("product_id = ? AND is_active = ?", productID, true).
		Preload("Reviewer")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "grade"})
	query = utils.ApplyPagination(query, params)

	var reviews []models.Review
	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	return reviews, total, nil
}

func (s *ReviewService) CreateReview(caller policy.Caller, productID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if decision := policy.Evaluate(caller, policy.ActionCreate, policy.ResourceProductReviews, nil); !decision.Allowed {
		return nil, &PolicyError{Decision: decision}
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.Where("id = ? AND status = ?", productID, models.ProductStatusActive).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	review := &models.Review{
		ProductID: productID,
		UserID:    caller.UserID,
		Grade:     req.Grade,
		Comment:   req.Comment,
		IsActive:  true,
	}

	// Creating a review and refreshing the product's aggregate rating
	// must land together.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return recalculateProductRating(tx, productID)
	})
	if err != nil {
		return nil, err
	}

	s.db.Preload("Reviewer").First(review, review.ID)

	return review, nil
}

// recalculateProductRating recomputes the average grade and review count
// for a product from its active reviews.
func recalculateProductRating(tx *gorm.DB, productID uuid.UUID) error {
	var stats struct {
		Average float64
		Count   int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(grade), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND is_active = ?", productID, true).
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	err = tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       stats.Average,
			"review_count": stats.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	return nil
}
