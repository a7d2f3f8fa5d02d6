package response

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Error    interface{} `json:"error,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Navigate tells the UI to move to location. It is a successful outcome, not
// an error: nothing else happened on the server.
func Navigate(w http.ResponseWriter, location string, data interface{}) {
	JSON(w, http.StatusOK, Response{
		Success:  true,
		Data:     data,
		Redirect: location,
	})
}

func Error(w http.ResponseWriter, statusCode int, message string, err interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}

// Fail is an error response that still carries data, e.g. the current state
// of a calendar view.
func Fail(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Data:    data,
	})
}

// SessionExpired answers 401 and points the UI at the login page.
func SessionExpired(w http.ResponseWriter, location string, data interface{}) {
	JSON(w, http.StatusUnauthorized, Response{
		Success:  false,
		Message:  "Session expired, please log in again",
		Data:     data,
		Redirect: location,
	})
}

func ValidationError(w http.ResponseWriter, errors interface{}) {
	JSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Error:   errors,
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message, nil)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message, nil)
}

// BadGateway reports a clinic backend failure; data may carry the current
// view state.
func BadGateway(w http.ResponseWriter, message string, data interface{}) {
	if message == "" {
		message = "Clinic service unavailable"
	}
	Fail(w, http.StatusBadGateway, message, data)
}

func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Rate limit exceeded. Try again later.", nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message, nil)
}
