package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"subaacare-server/internal/services"
	"subaacare-server/internal/utils"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	Auth *services.AuthService
	Log  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Log: log}
}

// RegisterRequest represents the request body for user registration.
// Professional fields are only read when role is PROFESSIONAL.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
	ProfileRequest
}

// Register handles user registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !utils.BindAndValidate(c, &req) {
		return // Error response handled by BindAndValidate
	}

	res, err := h.Auth.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Profile:  req.ProfileRequest.input(),
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.Created(c, res)
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles user login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, res)
}

// Me returns the current user and their profile.
func (h *AuthHandler) Me(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	acct, err := h.Auth.Me(c.Request.Context(), cl)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}
	utils.OK(c, acct)
}

// Logout revokes the presented token when a denylist is configured.
func (h *AuthHandler) Logout(c *gin.Context) {
	cl, ok := caller(c)
	if !ok {
		return
	}
	if err := h.Auth.Logout(c.Request.Context(), cl); err != nil {
		respondError(c, h.Log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
