package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/models"
	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

const callerKey = "caller"

// SessionVerifier turns a bearer token into the caller it was issued to.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (services.Caller, error)
}

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(verifier SessionVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.Unauthorized(c, "Invalid authorization header format")
			return
		}

		caller, err := verifier.VerifySession(c.Request.Context(), parts[1])
		if err != nil {
			if services.IsKind(err, services.KindAuth) {
				utils.Unauthorized(c, services.PublicMessage(err))
				return
			}
			log.Error("session verification failed", zap.Error(err))
			utils.InternalServerError(c, services.PublicMessage(err))
			return
		}

		// Set user information in context for downstream handlers
		c.Set(callerKey, caller)
		c.Set("userID", caller.UserID)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			utils.Unauthorized(c, "authentication required")
			return
		}
		if err := services.RequireRole(caller, allowedRoles...); err != nil {
			utils.Forbidden(c, services.PublicMessage(err))
			return
		}
		c.Next()
	}
}

// GetCaller returns the identity AuthMiddleware stored on the context.
func GetCaller(c *gin.Context) (services.Caller, bool) {
	v, exists := c.Get(callerKey)
	if !exists {
		return services.Caller{}, false
	}
	caller, ok := v.(services.Caller)
	return caller, ok
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}
