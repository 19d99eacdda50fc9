package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storerating/internal/auth"
	apperrors "storerating/internal/errors"
	"storerating/internal/middleware"
	"storerating/internal/model"
)

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// StatusResponse is a bare acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User *model.User `json:"user"`
}

// UserDetailEnvelope wraps the admin single-user view.
type UserDetailEnvelope struct {
	User *model.UserDetail `json:"user"`
}

// UsersEnvelope wraps the admin user listing.
type UsersEnvelope struct {
	Users []model.User `json:"users"`
}

// StoreEnvelope wraps a single store.
type StoreEnvelope struct {
	Store *model.Store `json:"store"`
}

// AdminStoresEnvelope wraps the admin store listing.
type AdminStoresEnvelope struct {
	Stores []model.AdminStoreRow `json:"stores"`
}

// UserStoresEnvelope wraps the store listing for regular users.
type UserStoresEnvelope struct {
	Stores []model.UserStoreRow `json:"stores"`
}

// RatingEnvelope wraps a single rating.
type RatingEnvelope struct {
	Rating *model.Rating `json:"rating"`
}

var errInvalidBody = echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
	Error: "invalid request body",
	Code:  "INVALID_BODY",
})

// ToHTTPError converts any error into an *echo.HTTPError whose message is one
// of the two response envelopes. Unknown errors become a generic 500 that keeps
// the cause as the internal error for logging.
func ToHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ValidationResponse{Errors: ve.Fields})
	}
	mapped := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(mapped.StatusCode, mapped.ToErrorResponse()).SetInternal(err)
}

// bindAndValidate decodes the request into req and runs its validation rules.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidBody.WithInternal(err)
	}
	if err := c.Validate(req); err != nil {
		return ToHTTPError(err)
	}
	return nil
}

func identity(c echo.Context) (*auth.Claims, error) {
	claims, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, ToHTTPError(apperrors.ErrInvalidToken)
	}
	return claims, nil
}
