// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/marketsquare/storefront/internal/config"
	"github.com/marketsquare/storefront/internal/handlers"
	"github.com/marketsquare/storefront/internal/middleware"
	"github.com/marketsquare/storefront/internal/policy"
	"github.com/marketsquare/storefront/internal/services"
	"github.com/marketsquare/storefront/internal/utils"
)

func Initialize(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *gin.Engine {
	// Initialize services
	sessionService := services.NewSessionService(db, redisClient, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, sessionService, cfg)
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	productService := services.NewProductService(db)
	reviewService := services.NewReviewService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limits := middleware.NewRateLimits(cfg.RateLimit)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(limits.Public())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Authentication routes
	auth := r.Group("")
	auth.Use(limits.Auth())
	{
		auth.POST("/users", authHandler.Register)
		auth.POST("/token", authHandler.Login)
		auth.POST("/refresh", middleware.OptionalAuth(sessionService), authHandler.Refresh)
		auth.POST("/logout", middleware.AuthRequired(sessionService), authHandler.Logout)
	}

	// User routes
	users := r.Group("/users")
	users.Use(middleware.AuthRequired(sessionService))
	{
		users.GET("/me", userHandler.GetProfile)
	}

	// Category routes
	categories := r.Group("/categories")
	{
		categories.GET("", categoryHandler.ListCategories)
		categories.GET("/:id/products", categoryHandler.ListCategoryProducts)

		// Admin-managed catalog structure
		protected := categories.Group("")
		protected.Use(middleware.AuthRequired(sessionService))
		{
			protected.POST("",
				middleware.Authorize(policy.ActionCreate, policy.ResourceCategory),
				categoryHandler.CreateCategory)
			protected.PATCH("/:id",
				middleware.Authorize(policy.ActionUpdate, policy.ResourceCategory),
				categoryHandler.UpdateCategory)
		}
	}

	// Product routes
	products := r.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/:id", middleware.OptionalAuth(sessionService), productHandler.GetProduct)
		products.GET("/:id/reviews", reviewHandler.ListProductReviews)

		// Authenticated routes
		protected := products.Group("")
		protected.Use(middleware.AuthRequired(sessionService))
		{
			protected.POST("",
				middleware.Authorize(policy.ActionCreate, policy.ResourceProduct),
				productHandler.CreateProduct)
			protected.PUT("/:id", productHandler.UpdateProduct)
			protected.DELETE("/:id", productHandler.DeleteProduct)
			protected.POST("/:id/reviews", reviewHandler.CreateReview)
			protected.POST("/upload-images",
				limits.Upload(),
				middleware.Authorize(policy.ActionCreate, policy.ResourceProduct),
				productHandler.UploadImages)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
