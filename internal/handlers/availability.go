package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

type AvailabilityHandler struct {
	Availability *services.AvailabilityService
	Log          *zap.Logger
}

func NewAvailabilityHandler(availability *services.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Availability: availability, Log: log}
}

// SlotRequest represents the request body for publishing a slot.
type SlotRequest struct {
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

func (h *AvailabilityHandler) Create(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req SlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	slot, err := h.Availability.CreateSlot(c.Request.Context(), cl, req.Start, req.End)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Created(c, slot)
}

func (h *AvailabilityHandler) Mine(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	slots, err := h.Availability.ListOwnSlots(c.Request.Context(), cl)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, slots)
}

func (h *AvailabilityHandler) Delete(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	if err := h.Availability.DeleteSlot(c.Request.Context(), cl, c.Param("id")); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Search handles GET /availability/search?start=&end=&q=&location=
// Times are RFC 3339.
func (h *AvailabilityHandler) Search(c *gin.Context) {
	var w services.Window
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start", &w.From}, {"end", &w.To}} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.BadRequest(c, p.name+" must be an RFC 3339 timestamp")
			return
		}
		*p.dst = &t
	}

	result, err := h.Availability.SearchAvailable(c.Request.Context(), w, c.Query("q"), c.Query("location"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, result)
}
