package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlekodaj/gatepass/internal/auth"
)

type Handler struct {
	authService *auth.Service
}

func NewHandler(authService *auth.Service) *Handler {
	return &Handler{authService: authService}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	apiGroup := router.Group("/api")

	authGroup := apiGroup.Group("/auth")
	authGroup.POST("/register", h.handleRegister)
	authGroup.POST("/login", h.handleLogin)
}

type registerRequest struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type outcomeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		UserID:   req.UserID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, outcomeResponse{Success: true, Message: result.Message})
}

func (h *Handler) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeFailure(c, http.StatusBadRequest, "invalid payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), auth.LoginInput{
		Identifier: req.LoginID,
		Password:   req.Password,
	})
	if err != nil {
		writeAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcomeResponse{Success: true, Message: result.Message})
}

// writeAuthError maps a service error class onto an HTTP status and a
// fixed caller-facing message. Internal detail stays in the logs.
func writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrValidation):
		writeFailure(c, http.StatusBadRequest, "all fields are required")
	case errors.Is(err, auth.ErrDuplicateUser):
		writeFailure(c, http.StatusConflict, "user id or email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeFailure(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrStoreUnavailable):
		writeFailure(c, http.StatusServiceUnavailable, "service temporarily unavailable, please retry")
	default:
		writeFailure(c, http.StatusInternalServerError, "something went wrong")
	}
}

func writeFailure(c *gin.Context, status int, message string) {
	c.JSON(status, outcomeResponse{Success: false, Message: message})
}
