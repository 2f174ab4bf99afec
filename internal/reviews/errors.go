package reviews

import (
	"errors"
	"net/http"
)

// Domain errors for review operations.
var (
	ErrNotFound     = errors.New("review not found")
	ErrFlagNotFound = errors.New("flag not found")
	ErrDuplicate    = errors.New("review already exists")
	ErrPersist      = errors.New("review persist failed")
)

// MapHTTPStatus maps review domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrFlagNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
