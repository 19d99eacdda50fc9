package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storerating/internal/service"
)

// OwnerHandler serves the store owner dashboard.
type OwnerHandler struct {
	dashboards service.DashboardService
}

// NewOwnerHandler creates an owner handler.
func NewOwnerHandler(dashboards service.DashboardService) *OwnerHandler {
	return &OwnerHandler{dashboards: dashboards}
}

// Dashboard godoc
// @Summary Owner dashboard
// @Description The caller's store, its average rating (null when unrated) and every rating newest first.
// @Tags owner
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.OwnerDashboard
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /owner/dashboard [get]
func (h *OwnerHandler) Dashboard(c echo.Context) error {
	claims, err := identity(c)
	if err != nil {
		return err
	}
	dash, err := h.dashboards.OwnerDashboard(c.Request().Context(), claims.UserID)
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, dash)
}
