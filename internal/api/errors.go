// errors.go - Structured error handling for API responses
package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIError represents a structured API error response. Message is the
// user-visible summary; internal detail (paths, wrapped causes) is logged
// server-side and never serialized.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBadRequestError creates a 400 Bad Request error.
func NewBadRequestError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: message}
}

// NewValidationError creates a 400 validation error for a specific field.
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error.
func NewNotFoundError(resource, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error.
func NewConflictError(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: "CONFLICT", Message: message}
}

// NewInternalError creates a 500 Internal Server Error. The cause is
// logged, not exposed.
func NewInternalError(message string, cause error) *APIError {
	if cause != nil {
		log.Printf("[API] internal error: %s: %v", message, cause)
	}
	return &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: message}
}

// ErrorHandler is the echo HTTPErrorHandler translating every error into
// the machine-readable APIError shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		log.Printf("[API] unhandled error: %v", err)
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
	}

	c.JSON(apiErr.Status, apiErr)
}
