package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

// ProfileRequest carries the professional attributes of a profile.
type ProfileRequest struct {
	Specialties     string   `json:"specialties"`
	Location        string   `json:"location"`
	Category        string   `json:"category"`
	Bio             *string  `json:"bio"`
	HourlyRate      *float64 `json:"hourlyRate" binding:"omitempty,min=0"`
	ExperienceYears *int     `json:"experienceYears" binding:"omitempty,min=0"`
	Languages       *string  `json:"languages"`
}

func (r ProfileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		Specialties:     r.Specialties,
		Location:        r.Location,
		Category:        r.Category,
		Bio:             r.Bio,
		HourlyRate:      r.HourlyRate,
		ExperienceYears: r.ExperienceYears,
		Languages:       r.Languages,
	}
}

// ProfessionalHandler serves the public directory and a professional's own
// profile.
type ProfessionalHandler struct {
	Approval     *services.ApprovalService
	Availability *services.AvailabilityService
	Log          *zap.Logger
}

func NewProfessionalHandler(approval *services.ApprovalService, availability *services.AvailabilityService, log *zap.Logger) *ProfessionalHandler {
	return &ProfessionalHandler{Approval: approval, Availability: availability, Log: log}
}

// List handles GET /professionals?q=&location=
func (h *ProfessionalHandler) List(c *gin.Context) {
	list, err := h.Approval.ListProfessionals(c.Request.Context(), c.Query("q"), c.Query("location"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, list)
}

// Get returns one approved professional with their rating summary.
func (h *ProfessionalHandler) Get(c *gin.Context) {
	detail, err := h.Approval.GetProfessional(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, detail)
}

func (h *ProfessionalHandler) ByUser(c *gin.Context) {
	detail, err := h.Approval.ProfileByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, detail)
}

// OpenSlots lists the open future slots of a professional.
func (h *ProfessionalHandler) OpenSlots(c *gin.Context) {
	slots, err := h.Availability.ListOpenSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, slots)
}

// Submit creates or resubmits the caller's profile for review.
func (h *ProfessionalHandler) Submit(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req ProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	profile, err := h.Approval.SubmitProfile(c.Request.Context(), cl, req.input())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, profile)
}

// Me returns the caller's profile including its moderation status.
func (h *ProfessionalHandler) Me(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	profile, err := h.Approval.MyProfile(c.Request.Context(), cl)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, profile)
}
