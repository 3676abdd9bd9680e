// Package errors defines the typed application errors returned by services.
// Handlers turn an *AppError into a JSON envelope with its code and message;
// the wrapped internal error is only ever logged.
package errors

import "net/http"

// AppError is a service-layer failure with a stable code, a client-safe
// message, the HTTP status to answer with and an optional cause.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches on the error code so wrapped copies compare equal to their
// sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap copies a sentinel and attaches the internal cause.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage copies a sentinel with a custom client-facing message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Auth.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	ErrQueueClosed    = &AppError{Code: "QUEUE_CLOSED", Message: "Background processing is shutting down", StatusCode: http.StatusServiceUnavailable}
	ErrQueueFull      = &AppError{Code: "QUEUE_FULL", Message: "Background processing is busy, try again later", StatusCode: http.StatusServiceUnavailable}
)

// Pipeline.
var (
	ErrPipelineNotConfigured = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
	ErrInvalidAPIKey         = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
)

// Users.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Budget cycles.
var (
	ErrCycleNotFound  = &AppError{Code: "CYCLE_NOT_FOUND", Message: "Budget cycle not found", StatusCode: http.StatusNotFound}
	ErrCycleCompleted = &AppError{Code: "CYCLE_COMPLETED", Message: "Budget cycle is already completed", StatusCode: http.StatusConflict}
	ErrInvalidPeriod  = &AppError{Code: "INVALID_PERIOD", Message: "Cycle end date must be after its start date", StatusCode: http.StatusBadRequest}
)

// Transactions.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidCategory     = &AppError{Code: "INVALID_CATEGORY", Message: "Unknown spending category", StatusCode: http.StatusBadRequest}
)

// Analytics and completion.
var (
	ErrSnapshotNotFound      = &AppError{Code: "SNAPSHOT_NOT_FOUND", Message: "Analytics have not been computed yet", StatusCode: http.StatusNotFound}
	ErrCompletionFailed      = &AppError{Code: "COMPLETION_FAILED", Message: "Text generation failed", StatusCode: http.StatusBadGateway}
	ErrCompletionUnavailable = &AppError{Code: "COMPLETION_UNAVAILABLE", Message: "Text generation is not configured", StatusCode: http.StatusServiceUnavailable}
)
