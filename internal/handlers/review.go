// internal/handlers/review.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketsquare/storefront/internal/middleware"
	"github.com/marketsquare/storefront/internal/services"
	"github.com/marketsquare/storefront/internal/utils"
)

type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// GET /products/:id/reviews
func (h *ReviewHandler) ListProductReviews(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	reviews, total, err := h.reviewService.ListProductReviews(productID, params)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	caller := middleware.CallerFromContext(c)
	review, err := h.reviewService.CreateReview(caller, productID, &req)
	if err != nil {
		var policyErr *services.PolicyError
		if errors.As(err, &policyErr) {
			middleware.AbortForDecision(c, policyErr.Decision)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"review": review,
	})
}
