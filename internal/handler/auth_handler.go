package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storerating/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest represents a self-registration request.
type SignupRequest struct {
	Name     string  `json:"name" validate:"required,min=20,max=60,alnumspace" msg:"Name must be 20-60 characters" msg_alnumspace:"Name must be alphanumeric"`
	Email    string  `json:"email" validate:"required,email" msg:"Invalid email"`
	Password string  `json:"password" validate:"required,min=8,max=16,password" msg:"Password must be 8-16 characters" msg_password:"Password must include uppercase and special character"`
	Address  *string `json:"address" validate:"omitempty,max=400" msg:"Address max 400 characters"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Invalid email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest represents a password change request.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required" msg:"Current password required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=16,password" msg:"Password must include uppercase and special character"`
}

// Signup godoc
// @Summary Register a new user
// @Description Creates an account with the user role and returns a token for it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ValidationResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Address)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ValidationResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, token, err := h.authService.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// ChangePassword godoc
// @Summary Change own password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/password [patch]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	claims, err := identity(c)
	if err != nil {
		return err
	}
	var req ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authService.ChangePassword(c.Request().Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "password_updated"})
}

// Logout godoc
// @Summary Revoke the presented token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatusResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "logged_out"})
}
