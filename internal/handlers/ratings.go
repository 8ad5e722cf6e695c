package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

type RatingHandler struct {
	Ratings *services.RatingService
	Log     *zap.Logger
}

func NewRatingHandler(ratings *services.RatingService, log *zap.Logger) *RatingHandler {
	return &RatingHandler{Ratings: ratings, Log: log}
}

type RateRequest struct {
	BookingID string `json:"bookingId" binding:"required"`
	Score     int    `json:"score" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}

func (h *RatingHandler) List(c *gin.Context) {
	list, err := h.Ratings.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, list)
}

func (h *RatingHandler) Rate(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req RateRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	rating, err := h.Ratings.Rate(c.Request.Context(), cl, c.Param("id"), req.BookingID, req.Score, req.Comment)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Created(c, rating)
}
