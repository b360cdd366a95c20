package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/hrscreen/internal/common"
	"github.com/dmitrijs2005/hrscreen/internal/logging"
	"github.com/dmitrijs2005/hrscreen/internal/server/auth"
	"github.com/dmitrijs2005/hrscreen/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthService is the part of services.AuthService the HTTP API calls.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
	VerifyToken(ctx context.Context, accessToken string) (*auth.AccessClaims, error)
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	CompanyID string `json:"companyId" validate:"required"`
	Role      string `json:"role" validate:"omitempty,oneof=RECRUITER HIRING_MANAGER ADMIN"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MeResponse struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	auth AuthService
	log  logging.Logger
}

func NewAuthHandler(svc AuthService, log logging.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CompanyID: req.CompanyID,
		Role:      req.Role,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) LogoutAll(c *gin.Context) {
	claims, ok := GetClaims(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.auth.LogoutAll(c.Request.Context(), claims.UserID); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out from all devices"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := GetClaims(c)
	if !ok {
		RespondWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      string(claims.Role),
		CompanyID: claims.CompanyID,
	})
}

func (h *AuthHandler) fail(c *gin.Context, err error) {
	if status, _ := classify(err); status == http.StatusInternalServerError {
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	respondServiceError(c, err)
}

// classify maps service errors to an HTTP status and a client-safe message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUserAlreadyExists):
		return http.StatusConflict, "User with this email already exists"
	case errors.Is(err, common.ErrCompanyAlreadyExists):
		return http.StatusConflict, "Company with this domain already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, common.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, "Invalid refresh token"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, common.ErrAccountDeactivated):
		return http.StatusForbidden, "Account is deactivated"
	case errors.Is(err, common.ErrCompanyDeactivated):
		return http.StatusForbidden, "Company account is deactivated"
	case errors.Is(err, common.ErrCompanyNotFound):
		return http.StatusBadRequest, "Company not found"
	case errors.Is(err, common.ErrInvalidRole):
		return http.StatusBadRequest, "Invalid role"
	case errors.Is(err, common.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password must be at most 72 bytes"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondServiceError(c *gin.Context, err error) {
	status, msg := classify(err)
	RespondWithError(c, status, msg)
}
