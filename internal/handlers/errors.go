package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/middleware"
	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

// respondError maps a service error to its status code. Internal errors are
// logged in full and answered with a generic message.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	msg := services.PublicMessage(err)
	switch services.KindOf(err) {
	case services.KindValidation:
		utils.BadRequest(c, msg)
	case services.KindAuth:
		utils.Unauthorized(c, msg)
	case services.KindForbidden:
		utils.Forbidden(c, msg)
	case services.KindNotFound:
		utils.NotFound(c, msg)
	case services.KindConflict:
		utils.Conflict(c, msg)
	default:
		log.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)
		utils.InternalServerError(c, msg)
	}
}

// caller reads the authenticated identity. Routes using it sit behind
// AuthMiddleware, so a miss is answered as unauthenticated.
func caller(c *gin.Context) (services.Caller, bool) {
	cl, ok := middleware.GetCaller(c)
	if !ok {
		utils.Unauthorized(c, "authentication required")
	}
	return cl, ok
}
