// internal/handlers/category.go
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

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// GET /categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	categories, total, err := h.categoryService.ListCategories(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(categories, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GET /categories/:id/products
func (h *CategoryHandler) ListCategoryProducts(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	params := utils.GetPaginationParams(c)

	products, total, err := h.categoryService.ListCategoryProducts(categoryID, params)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "category")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	caller := middleware.CallerFromContext(c)
	category, err := h.categoryService.CreateCategory(caller, &req)
	if err != nil {
		var policyErr *services.PolicyError
		if errors.As(err, &policyErr) {
			middleware.AbortForDecision(c, policyErr.Decision)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"category": category,
	})
}

// PATCH /categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID", nil)
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	caller := middleware.CallerFromContext(c)
	category, err := h.categoryService.UpdateCategory(caller, categoryID, &req)
	if err != nil {
		var policyErr *services.PolicyError
		if errors.As(err, &policyErr) {
			middleware.AbortForDecision(c, policyErr.Decision)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "category")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"category": category,
	})
}
