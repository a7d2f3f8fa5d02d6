package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response (or a transport failure, Status 0) from the
// clinic backend. Message carries the backend's "message" field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("clinic API unreachable: %s", e.Message)
	}
	if e.Message == "" {
		return fmt.Sprintf("clinic API returned %d", e.Status)
	}
	return fmt.Sprintf("clinic API returned %d: %s", e.Status, e.Message)
}

// ServerMessage returns the backend-provided message of err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Message
	}
	return ""
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsUnavailable reports whether the backend could not be reached at all.
func IsUnavailable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// StatusOf returns the backend status carried by err, 0 if none.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
