package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/grocerylab/grocery-api/internal/auth"
	"github.com/grocerylab/grocery-api/internal/middleware"
	"github.com/grocerylab/grocery-api/pkg/errors"
	"github.com/grocerylab/grocery-api/pkg/response"
)

// AuthHandler manages authentication flows (login/register/otp/reset/logout).
type AuthHandler struct {
	auth *iauth.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *iauth.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Strategy     string `json:"strategy"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refresh_token"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.Login(c.Request.Context(), iauth.LoginInput{
		Strategy:     strings.TrimSpace(req.Strategy),
		Email:        req.Email,
		Password:     req.Password,
		RefreshToken: strings.TrimSpace(req.RefreshToken),
	}, c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Mobile   string `json:"mobile"`
	OTP      string `json:"otp" validate:"required"`
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	session, err := h.auth.Register(c.Request.Context(), iauth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Mobile:   req.Mobile,
		OTP:      req.OTP,
	}, c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, session)
}

type sendOTPRequest struct {
	Strategy string `json:"strategy" validate:"required"`
	Identity string `json:"identity" validate:"required"`
}

// POST /api/auth/otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.SendOTP(c.Request.Context(), req.Strategy, req.Identity); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sent": true})
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reset": true})
}

// POST /api/auth/logout (authenticated)
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}
