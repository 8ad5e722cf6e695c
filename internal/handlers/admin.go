package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

// AdminHandler handles profile moderation.
type AdminHandler struct {
	Approval *services.ApprovalService
	Log      *zap.Logger
}

func NewAdminHandler(approval *services.ApprovalService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{Approval: approval, Log: log}
}

func (h *AdminHandler) ListPending(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	list, err := h.Approval.ListPending(c.Request.Context(), cl)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, list)
}

func (h *AdminHandler) Approve(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	profile, err := h.Approval.Approve(c.Request.Context(), cl, c.Param("id"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, profile)
}

// RejectRequest is optional; an empty body uses the default reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) Reject(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequest(c, "invalid request payload")
		return
	}
	profile, err := h.Approval.Reject(c.Request.Context(), cl, c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, profile)
}
