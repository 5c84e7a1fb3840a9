// internal/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marketsquare/storefront/internal/models"
	"github.com/marketsquare/storefront/internal/policy"
	"github.com/marketsquare/storefront/internal/utils"
)

// TokenRevoker reports whether an access token's jti has been revoked by a
// logout that happened before the token's natural expiry.
type TokenRevoker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func AuthRequired(revoker TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		// Tokens we issue always carry an expiry; one without it is not ours.
		if claims.ExpiresAt == nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				utils.InternalErrorResponse(c, "")
				c.Abort()
				return
			}
			if revoked {
				utils.UnauthorizedResponse(c, "Token has been revoked")
				c.Abort()
				return
			}
		}

		// Set user info in context
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("user_type", claims.UserType)
		c.Set("token_id", claims.ID)
		c.Set("token_expires_at", claims.ExpiresAt.Time)
		c.Next()
	}
}

func OptionalAuth(revoker TokenRevoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil || claims.ExpiresAt == nil {
			c.Next()
			return
		}

		if revoker != nil {
			if revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID); err != nil || revoked {
				c.Next()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("user_type", claims.UserType)
		c.Set("token_id", claims.ID)
		c.Next()
	}
}

// CallerFromContext rebuilds the policy caller from whatever AuthRequired or
// OptionalAuth left in the gin context.
func CallerFromContext(c *gin.Context) policy.Caller {
	userIDStr, ok := utils.GetUserIDFromContext(c)
	if !ok {
		return policy.Anonymous()
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return policy.Anonymous()
	}
	userType, _ := utils.GetUserTypeFromContext(c)
	return policy.ForUser(userID, models.UserType(userType))
}

// Authorize gates a route on the policy table's tier rules. Ownership-gated
// rules get their subject check a second time in the service layer, once the
// instance has been loaded.
func Authorize(action policy.Action, resource policy.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFromContext(c)

		// Tier gate only; ownership needs the loaded instance.
		decision := policy.Evaluate(caller, action, resource, policy.Owned(caller.UserID))
		if !decision.Allowed {
			AbortForDecision(c, decision)
			return
		}
		c.Next()
	}
}

// AbortForDecision maps a policy denial to its transport outcome.
func AbortForDecision(c *gin.Context, decision policy.Decision) {
	switch decision.Reason {
	case policy.ReasonNotAuthenticated:
		utils.UnauthorizedResponse(c, "")
	case policy.ReasonUnsupported:
		utils.MethodNotAllowedResponse(c, "")
	case policy.ReasonNotOwner:
		utils.ForbiddenResponse(c, "You do not own this resource")
	case policy.ReasonNotSeller:
		utils.ForbiddenResponse(c, "Seller account required")
	case policy.ReasonNotAdmin:
		utils.ForbiddenResponse(c, "Admin account required")
	default:
		utils.ForbiddenResponse(c, "")
	}
	c.Abort()
}
