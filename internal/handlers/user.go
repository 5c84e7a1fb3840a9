// internal/handlers/user.go
package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marketsquare/storefront/internal/middleware"
	"github.com/marketsquare/storefront/internal/services"
	"github.com/marketsquare/storefront/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	user, err := h.userService.GetProfile(caller, caller.UserID)
	if err != nil {
		var policyErr *services.PolicyError
		if errors.As(err, &policyErr) {
			middleware.AbortForDecision(c, policyErr.Decision)
			return
		}
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "user")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}
