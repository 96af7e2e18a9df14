package apperror

import (
	"fmt"
	"net/http"
)

// Error type identifiers exposed to API clients.
const (
	TypeInvalidRequest      = "invalid_request"
	TypeNotFound            = "not_found"
	TypeInsufficientFunds   = "insufficient_funds"
	TypeUnauthorized        = "unauthorized"
	TypeIdempotencyConflict = "idempotency_conflict"
	TypeRateLimited         = "rate_limited"
	TypeInternal            = "internal_error"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(errType string, message string, httpStatus int) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(errType string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// envelope is the wire shape for error responses: {"error":{"type":...,"message":...}}.
type envelope struct {
	Error *AppError `json:"error"`
}

// Envelope wraps the error in the standard wire shape for JSON encoding.
func (e *AppError) Envelope() interface{} {
	return envelope{Error: e}
}

// ---- Validation ----

// Validation returns an invalid_request error with the given message.
func Validation(message string) *AppError {
	return New(TypeInvalidRequest, message, http.StatusBadRequest)
}

// ---- Ledger business logic ----

func ErrNotFound(entity string) *AppError {
	return New(TypeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInsufficientFunds() *AppError {
	return New(TypeInsufficientFunds, "Charge amount exceeds available balance", http.StatusBadRequest)
}

// ---- Idempotency ----

func ErrIdempotencyConflict() *AppError {
	return New(TypeIdempotencyConflict, "Idempotency key reused with a different request payload", http.StatusConflict)
}

// ---- Authentication ----

func ErrUnauthorized() *AppError {
	return New(TypeUnauthorized, "Missing or invalid API key", http.StatusUnauthorized)
}

// ---- Rate limiting ----

func ErrRateLimitExceeded() *AppError {
	return New(TypeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System ----

// InternalError wraps an internal error without exposing its details.
func InternalError(err error) *AppError {
	return Wrap(TypeInternal, "Internal server error", http.StatusInternalServerError, err)
}
