package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "storerating/internal/errors"
	"storerating/internal/model"
	"storerating/internal/service"
)

// AdminHandler serves the admin endpoints.
type AdminHandler struct {
	users      service.UserService
	stores     service.StoreService
	dashboards service.DashboardService
}

// NewAdminHandler creates a handler layer.
func NewAdminHandler(users service.UserService, stores service.StoreService, dashboards service.DashboardService) *AdminHandler {
	return &AdminHandler{users: users, stores: stores, dashboards: dashboards}
}

// CreateUserRequest is the admin payload for creating an account of any role.
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=20,max=60,alnumspace" msg:"Name must be 20-60 characters" msg_alnumspace:"Name must be alphanumeric"`
	Email    string  `json:"email" validate:"required,email" msg:"Invalid email"`
	Password string  `json:"password" validate:"required,min=8,max=16,password" msg:"Password must be 8-16 characters" msg_password:"Password must include uppercase and special character"`
	Address  *string `json:"address" validate:"omitempty,max=400" msg:"Address max 400 characters"`
	Role     string  `json:"role" validate:"required,oneof=admin user owner" msg:"Role must be admin, user, or owner"`
}

// CreateStoreRequest is the admin payload for creating a store.
type CreateStoreRequest struct {
	Name    string  `json:"name" validate:"required,min=20,max=60" msg:"Store name must be 20-60 characters"`
	Email   string  `json:"email" validate:"required,email" msg:"Invalid email"`
	Address *string `json:"address" validate:"omitempty,max=400" msg:"Address max 400 characters"`
	OwnerID *uint   `json:"owner_id"`
}

// CreateUser godoc
// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User payload"
// @Success 201 {object} UserEnvelope
// @Failure 400 {object} errors.ValidationResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/users [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return ToHTTPError(apperrors.NewValidationError("role", "Role must be admin, user, or owner"))
	}

	user, err := h.users.CreateUser(c.Request().Context(), service.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Role:     role,
	})
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, UserEnvelope{User: user})
}

// Dashboard godoc
// @Summary Admin summary counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.AdminSummary
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	summary, err := h.dashboards.AdminSummary(c.Request().Context())
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// ListUsers godoc
// @Summary List users
// @Description Filters are case-insensitive substring matches. Unknown sortBy falls back to name.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param email query string false "Email contains"
// @Param address query string false "Address contains"
// @Param role query string false "Role contains"
// @Param sortBy query string false "name | email | role"
// @Param sortOrder query string false "asc | desc"
// @Success 200 {object} UsersEnvelope
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context(), c.QueryParams())
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, UsersEnvelope{Users: users})
}

// GetUser godoc
// @Summary Get user by id
// @Description Owners also carry store_rating, the average of their store's ratings or null.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserDetailEnvelope
// @Failure 400 {object} errors.ValidationResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [get]
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil {
		return ToHTTPError(apperrors.NewValidationError("id", "id must be integer"))
	}
	user, err := h.users.GetUser(c.Request().Context(), uint(id))
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, UserDetailEnvelope{User: user})
}

// ListStores godoc
// @Summary List stores with average rating
// @Description Stores without ratings have avg_rating 0. Unknown sortBy falls back to name.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param email query string false "Email contains"
// @Param address query string false "Address contains"
// @Param sortBy query string false "name | email"
// @Param sortOrder query string false "asc | desc"
// @Success 200 {object} AdminStoresEnvelope
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/stores [get]
func (h *AdminHandler) ListStores(c echo.Context) error {
	stores, err := h.stores.ListStores(c.Request().Context(), c.QueryParams())
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, AdminStoresEnvelope{Stores: stores})
}

// CreateStore godoc
// @Summary Create store
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateStoreRequest true "Store payload"
// @Success 201 {object} StoreEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/stores [post]
func (h *AdminHandler) CreateStore(c echo.Context) error {
	var req CreateStoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	store, err := h.stores.CreateStore(c.Request().Context(), service.NewStore{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusCreated, StoreEnvelope{Store: store})
}
