package rulebook

import (
	"errors"
	"net/http"
)

// Domain errors for rulebook operations.
var (
	ErrLoad      = errors.New("rulebook load failed")
	ErrNotLoaded = errors.New("rulebook not loaded")
)

// MapHTTPStatus maps rulebook domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotLoaded) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrLoad) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
