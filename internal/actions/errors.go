package actions

import (
	"errors"
	"net/http"

	"github.com/redlinehq/redline/internal/rulebook"
)

// Domain errors for reviewer action operations.
var (
	ErrNotFound     = errors.New("reviewer action not found")
	ErrDuplicate    = errors.New("reviewer action already exists")
	ErrInvalidState = errors.New("reviewer action is no longer pending")
)

// MapHTTPStatus maps action domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidState) {
		return http.StatusConflict
	}
	if errors.Is(err, rulebook.ErrNotLoaded) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, rulebook.ErrLoad) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
