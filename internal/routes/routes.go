package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/handlers"
	"subaacare-server/internal/middleware"
	"subaacare-server/internal/models"
	"subaacare-server/internal/services"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth         *services.AuthService
	Approval     *services.ApprovalService
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Ratings      *services.RatingService
	Documents    *services.DocumentService
}

// SetupRoutes configures the application routes. Every authenticated route
// names the roles it admits; services check them again.
func SetupRoutes(router *gin.Engine, svc Services, db handlers.Pinger, authLimiter *middleware.IPRateLimiter, log *zap.Logger) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Auth, log)
	professionalHandler := handlers.NewProfessionalHandler(svc.Approval, svc.Availability, log)
	adminHandler := handlers.NewAdminHandler(svc.Approval, log)
	availabilityHandler := handlers.NewAvailabilityHandler(svc.Availability, log)
	bookingHandler := handlers.NewBookingHandler(svc.Bookings, log)
	ratingHandler := handlers.NewRatingHandler(svc.Ratings, log)
	documentHandler := handlers.NewDocumentHandler(svc.Documents, log)
	healthHandler := handlers.NewHealthHandler(db, log)

	router.GET("/health", healthHandler.Health)

	authenticate := middleware.AuthMiddleware(svc.Auth, log)
	role := middleware.RoleAuthMiddleware
	anyRole := role(models.RolePatient, models.RoleProfessional, models.RoleAdmin)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		limited := authRoutes.Group("", authLimiter.Middleware(log))
		limited.POST("/register", authHandler.Register)
		limited.POST("/login", authHandler.Login)

		authRoutes.GET("/me", authenticate, anyRole, authHandler.Me)
		authRoutes.POST("/logout", authenticate, anyRole, authHandler.Logout)
	}

	professionalRoutes := api.Group("/professionals")
	{
		// Public directory
		professionalRoutes.GET("", professionalHandler.List)
		professionalRoutes.GET("/by-user/:userId", professionalHandler.ByUser)
		professionalRoutes.GET("/:id", professionalHandler.Get)
		professionalRoutes.GET("/:id/availability", professionalHandler.OpenSlots)
		professionalRoutes.GET("/:id/ratings", ratingHandler.List)

		professionalRoutes.POST("/:id/ratings", authenticate, role(models.RolePatient), ratingHandler.Rate)

		own := professionalRoutes.Group("", authenticate, role(models.RoleProfessional))
		own.POST("", professionalHandler.Submit)
		own.GET("/me", professionalHandler.Me)
		own.POST("/me/documents", documentHandler.Upload)
	}

	adminRoutes := api.Group("/admin", authenticate, role(models.RoleAdmin))
	{
		adminRoutes.GET("/pending-professionals", adminHandler.ListPending)
		adminRoutes.PATCH("/approve/:id", adminHandler.Approve)
		adminRoutes.PATCH("/reject/:id", adminHandler.Reject)
	}

	api.GET("/documents/:id", authenticate, role(models.RoleAdmin, models.RoleProfessional), documentHandler.Get)

	availabilityRoutes := api.Group("/availability")
	{
		availabilityRoutes.GET("/search", availabilityHandler.Search)

		own := availabilityRoutes.Group("", authenticate, role(models.RoleProfessional))
		own.POST("", availabilityHandler.Create)
		own.GET("/mine", availabilityHandler.Mine)
		own.DELETE("/:id", availabilityHandler.Delete)
	}

	bookingRoutes := api.Group("/bookings", authenticate)
	{
		bookingRoutes.POST("", role(models.RolePatient), bookingHandler.Create)
		bookingRoutes.GET("/mine", role(models.RolePatient), bookingHandler.Mine)
		bookingRoutes.GET("/professional", role(models.RoleProfessional), bookingHandler.Incoming)
		// Status updates: who may do what is decided per booking
		bookingRoutes.PATCH("/:id/status", anyRole, bookingHandler.UpdateStatus)
	}
}
