package models

import "fmt"

// ErrorCode is a string type for consistent error codes.
type ErrorCode string

// Predefined error codes for API errors.
const (
	ErrorCodeInternalServerError ErrorCode = "internal_server_error"
	ErrorCodeStoreUnavailable    ErrorCode = "store_unavailable"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed    ErrorCode = "method_not_allowed"
)

type APIError struct {
	Code       ErrorCode `json:"code"`              // Machine readable error code
	Message    string    `json:"message"`           // Human-readable error message
	Details    any       `json:"details,omitempty"` // Optional: Additional details
	StatusCode int       `json:"-"`                 // HTTP status code
}

// Error makes APIError implement the error interface.
func (e APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (status %d)", e.Code, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewAPIError is a constructor for APIError.
func NewAPIError(code ErrorCode, message string, details any, statusCode int) APIError {
	return APIError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: statusCode,
	}
}
