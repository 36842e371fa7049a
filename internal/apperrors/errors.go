package apperrors

import (
	"errors"
	"net/http"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("access denied")
	ErrValidation             = errors.New("validation failed")
	ErrMessageNotFound        = errors.New("message not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrStoreFailure           = errors.New("store operation failed")
)

// HTTPStatus maps the error taxonomy onto response codes. Store failures and
// anything unknown collapse to a generic 500 so no detail leaks to callers.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthenticationRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorizationDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
