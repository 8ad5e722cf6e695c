package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

// BookingHandler handles booking-related requests.
type BookingHandler struct {
	Bookings *services.BookingService
	Log      *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *services.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Log: log}
}

// CreateBookingRequest represents the request body for creating a booking.
// ProfessionalID is the professional's profile id.
type CreateBookingRequest struct {
	ProfessionalID string    `json:"professionalId" binding:"required"`
	SlotID         string    `json:"slotId"`
	Start          time.Time `json:"start" binding:"required"`
	End            time.Time `json:"end" binding:"required"`
	Notes          string    `json:"notes" binding:"max=2000"`
}

// Create handles booking creation by a patient.
func (h *BookingHandler) Create(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	booking, err := h.Bookings.CreateBooking(c.Request.Context(), cl, services.BookingInput{
		ProfessionalID: req.ProfessionalID,
		SlotID:         req.SlotID,
		Start:          req.Start,
		End:            req.End,
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Created(c, booking)
}

// Mine lists the caller's bookings as a patient.
func (h *BookingHandler) Mine(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListOwnBookings(c.Request.Context(), cl)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, list)
}

// Incoming lists the bookings made with the calling professional.
func (h *BookingHandler) Incoming(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.Bookings.ListProfessionalBookings(c.Request.Context(), cl)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, list)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /bookings/:id/status. Who may set which status
// is decided by the booking service.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	booking, err := h.Bookings.UpdateStatus(c.Request.Context(), cl, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, booking)
}
