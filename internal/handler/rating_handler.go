package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "storerating/internal/errors"
	"storerating/internal/service"
)

// RatingObserver is told about every rating written.
type RatingObserver interface {
	RatingWritten(op string)
}

// RatingHandler serves the store browsing and rating endpoints of regular users.
type RatingHandler struct {
	stores   service.StoreService
	ratings  service.RatingService
	observer RatingObserver
}

// NewRatingHandler creates a rating handler. observer may be nil.
func NewRatingHandler(stores service.StoreService, ratings service.RatingService, observer RatingObserver) *RatingHandler {
	return &RatingHandler{stores: stores, ratings: ratings, observer: observer}
}

// SubmitRatingRequest creates a rating. Values are decoded as numbers so that
// fractional ratings fail validation rather than decoding.
type SubmitRatingRequest struct {
	StoreID float64 `json:"store_id" validate:"required,whole,min=1,max=4294967295" msg:"store_id must be integer"`
	Rating  float64 `json:"rating" validate:"required,whole,min=1,max=5" msg:"Rating must be 1-5"`
}

// UpdateRatingRequest changes an existing rating.
type UpdateRatingRequest struct {
	Rating float64 `json:"rating" validate:"required,whole,min=1,max=5" msg:"Rating must be 1-5"`
}

// ListStores godoc
// @Summary Search stores
// @Description Every matching store with its average rating (0 when unrated) and the caller's own rating (null when not rated).
// @Tags user
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param address query string false "Address contains"
// @Param sortBy query string false "name | address"
// @Param sortOrder query string false "asc | desc"
// @Success 200 {object} UserStoresEnvelope
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /user/stores [get]
func (h *RatingHandler) ListStores(c echo.Context) error {
	claims, err := identity(c)
	if err != nil {
		return err
	}
	stores, err := h.stores.ListForUser(c.Request().Context(), claims.UserID, c.QueryParams())
	if err != nil {
		return ToHTTPError(err)
	}
	return c.JSON(http.StatusOK, UserStoresEnvelope{Stores: stores})
}

// SubmitRating godoc
// @Summary Rate a store
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitRatingRequest true "Store and rating 1-5"
// @Success 201 {object} RatingEnvelope
// @Failure 400 {object} errors.ValidationResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /user/ratings [post]
func (h *RatingHandler) SubmitRating(c echo.Context) error {
	claims, err := identity(c)
	if err != nil {
		return err
	}
	var req SubmitRatingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rating, err := h.ratings.Submit(c.Request().Context(), claims.UserID, uint(req.StoreID), int(req.Rating))
	if err != nil {
		return ToHTTPError(err)
	}
	h.observe("create")
	return c.JSON(http.StatusCreated, RatingEnvelope{Rating: rating})
}

// UpdateRating godoc
// @Summary Change own rating of a store
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param storeId path int true "Store ID"
// @Param request body UpdateRatingRequest true "Rating 1-5"
// @Success 200 {object} RatingEnvelope
// @Failure 400 {object} errors.ValidationResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/ratings/{storeId} [patch]
func (h *RatingHandler) UpdateRating(c echo.Context) error {
	claims, err := identity(c)
	if err != nil {
		return err
	}
	storeID, err := strconv.ParseUint(c.Param("storeId"), 10, 0)
	if err != nil {
		return ToHTTPError(apperrors.NewValidationError("storeId", "storeId must be integer"))
	}
	var req UpdateRatingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rating, err := h.ratings.Update(c.Request().Context(), claims.UserID, uint(storeID), int(req.Rating))
	if err != nil {
		return ToHTTPError(err)
	}
	h.observe("update")
	return c.JSON(http.StatusOK, RatingEnvelope{Rating: rating})
}

func (h *RatingHandler) observe(op string) {
	if h.observer != nil {
		h.observer.RatingWritten(op)
	}
}
