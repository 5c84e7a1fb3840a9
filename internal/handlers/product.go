// internal/handlers/product.go
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

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := services.ProductListParams{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if categoryStr := c.Query("category_id"); categoryStr != "" {
		categoryID, err := uuid.Parse(categoryStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid category ID", nil)
			return
		}
		params.CategoryID = &categoryID
	}

	if sellerStr := c.Query("seller_id"); sellerStr != "" {
		sellerID, err := uuid.Parse(sellerStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid seller ID", nil)
			return
		}
		params.SellerID = &sellerID
	}

	products, total, err := h.productService.ListProducts(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(products, total, params.PaginationParams)
	utils.SetPaginationHeaders(c, result)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	viewer := middleware.CallerFromContext(c)
	product, err := h.productService.GetProduct(productID, viewer)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	caller := middleware.CallerFromContext(c)
	product, err := h.productService.CreateProduct(caller, &req)
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

	utils.CreatedResponse(c, gin.H{
		"product": product,
	})
}

// PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	caller := middleware.CallerFromContext(c)
	product, err := h.productService.UpdateProduct(caller, productID, &req)
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

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	caller := middleware.CallerFromContext(c)
	if err := h.productService.DeleteProduct(caller, productID); err != nil {
		var policyErr *services.PolicyError
		if errors.As(err, &policyErr) {
			middleware.AbortForDecision(c, policyErr.Decision)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Product deleted",
	})
}

// POST /products/upload-images
func (h *ProductHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images provided", nil)
		return
	}
	if len(files) > 10 {
		utils.BadRequestResponse(c, "Too many images, maximum is 10", nil)
		return
	}

	caller := middleware.CallerFromContext(c)
	options := h.storageService.ProductImageOptions(caller.UserID)

	var results []services.UploadResult
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Failed to open uploaded file", err.Error())
			return
		}

		if err := h.storageService.ValidateImage(file); err != nil {
			file.Close()
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}

		result, err := h.storageService.UploadFile(c.Request.Context(), file, header, options)
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}

		results = append(results, *result)
	}

	utils.CreatedResponse(c, gin.H{
		"images": results,
	})
}
