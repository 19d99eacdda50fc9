package errors

import (
	"errors"
	"net/http"
)

// Kind classifies failures into the categories surfaced to API clients.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// DomainError is a single-message failure with a kind and a machine code.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func newDomainError(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

var (
	// ErrDuplicateEmail is returned when a user or store email is already taken.
	ErrDuplicateEmail = newDomainError(KindConflict, "EMAIL_IN_USE", "Email already in use")
	// ErrInvalidCredentials is returned for unknown email or wrong password alike.
	ErrInvalidCredentials = newDomainError(KindUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	// ErrInvalidToken is returned when a bearer token is missing, malformed, expired or revoked.
	ErrInvalidToken = newDomainError(KindUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
	// ErrForbidden is returned when the caller's role may not use the endpoint.
	ErrForbidden = newDomainError(KindForbidden, "FORBIDDEN", "Forbidden")
	// ErrWrongCurrentPassword is returned by password change when the current password does not match.
	ErrWrongCurrentPassword = newDomainError(KindValidation, "WRONG_CURRENT_PASSWORD", "Current password is incorrect")
	// ErrUserNotFound is returned when a referenced user does not exist.
	ErrUserNotFound = newDomainError(KindNotFound, "USER_NOT_FOUND", "User not found")
	// ErrStoreNotFound is returned when a referenced store does not exist.
	ErrStoreNotFound = newDomainError(KindNotFound, "STORE_NOT_FOUND", "Store not found")
	// ErrOwnerStoreNotFound is returned when an owner has no store.
	ErrOwnerStoreNotFound = newDomainError(KindNotFound, "STORE_NOT_FOUND", "Store not found for owner")
	// ErrRatingNotFound is returned when updating a rating that does not exist.
	ErrRatingNotFound = newDomainError(KindNotFound, "RATING_NOT_FOUND", "Rating not found")
	// ErrDuplicateRating is returned when the user already rated the store.
	ErrDuplicateRating = newDomainError(KindConflict, "RATING_EXISTS", "Rating already exists")
	// ErrInvalidOwner is returned when owner_id does not reference a user with the owner role.
	ErrInvalidOwner = newDomainError(KindValidation, "INVALID_OWNER", "owner_id must be a valid owner")
	// ErrInvalidRating is returned when a rating value is outside 1-5.
	ErrInvalidRating = newDomainError(KindValidation, "INVALID_RATING", "Rating must be 1-5")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

// ValidationResponse is the body of a 400 caused by request validation.
type ValidationResponse struct {
	Errors []FieldError `json:"errors"`
}

// ValidationError carries every failed field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Field + ": " + e.Fields[0].Message
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// StatusOf returns the HTTP status for a failure kind.
func StatusOf(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// DomainError becomes a generic 500 so internal detail never reaches clients.
func MapErrorToHTTP(err error) *HTTPError {
	var de *DomainError
	if errors.As(err, &de) {
		return NewHTTPError(StatusOf(de.Kind), de.Message, de.Code)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
