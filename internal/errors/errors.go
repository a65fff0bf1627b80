package errors

import (
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors (401xx)
	ErrInvalidCredentials ErrorCode = "40101"
	ErrTokenExpired       ErrorCode = "40102"

	// Authorization errors (403xx)
	ErrForbidden ErrorCode = "40301"

	// Resource errors (404xx)
	ErrCampaignNotFound    ErrorCode = "40401"
	ErrApplicationNotFound ErrorCode = "40402"
	ErrContentNotFound     ErrorCode = "40403"
	ErrProfileNotFound     ErrorCode = "40404"

	// Request errors (400xx)
	ErrInvalidRequest   ErrorCode = "40001"
	ErrValidationFailed ErrorCode = "40002"
	ErrInvalidState     ErrorCode = "40003"
	ErrBudgetExceeded   ErrorCode = "40004"
	ErrAlreadyApplied   ErrorCode = "40005"

	// Rate limit errors (429xx)
	ErrRateLimited ErrorCode = "42901"

	// Server errors (500xx)
	ErrInternalServer     ErrorCode = "50001"
	ErrPaymentUnavailable ErrorCode = "50301"
)

// APIError represents a standardized API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// ErrorResponse represents the error response format
type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id"`
}

// Common errors
var (
	ErrInvalidCredentialsError = &APIError{
		Code:       ErrInvalidCredentials,
		Message:    "Invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpiredError = &APIError{
		Code:       ErrTokenExpired,
		Message:    "Token has expired",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbiddenError = &APIError{
		Code:       ErrForbidden,
		Message:    "Access denied",
		HTTPStatus: http.StatusForbidden,
	}

	ErrCampaignNotFoundError = &APIError{
		Code:       ErrCampaignNotFound,
		Message:    "Campaign not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrApplicationNotFoundError = &APIError{
		Code:       ErrApplicationNotFound,
		Message:    "Application not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrContentNotFoundError = &APIError{
		Code:       ErrContentNotFound,
		Message:    "Content not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrProfileNotFoundError = &APIError{
		Code:       ErrProfileNotFound,
		Message:    "Profile not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRateLimitedError = &APIError{
		Code:       ErrRateLimited,
		Message:    "Rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternalServerError = &APIError{
		Code:       ErrInternalServer,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrPaymentUnavailableError = &APIError{
		Code:       ErrPaymentUnavailable,
		Message:    "Payment verification service unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// NewValidationError creates a validation error with details
func NewValidationError(details any) *APIError {
	return &APIError{
		Code:       ErrValidationFailed,
		Message:    "Validation failed",
		Details:    details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) *APIError {
	return &APIError{
		Code:       ErrInvalidRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidStateError creates an error for operations attempted outside the
// required status, e.g. updating views on a non-approved application.
func NewInvalidStateError(message string) *APIError {
	return &APIError{
		Code:       ErrInvalidState,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewBudgetExceededError creates an admission-check failure error
func NewBudgetExceededError(message string) *APIError {
	return &APIError{
		Code:       ErrBudgetExceeded,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}
