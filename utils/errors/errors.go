package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an APIError for callers that need to branch on it.
type Kind string

const (
	// KindAuth is a rejected login or registration.
	KindAuth Kind = "auth"
	// KindValidation is a client-side form check that failed before any request.
	KindValidation Kind = "validation"
	// KindRequest is any other non-success response from the remote service.
	KindRequest Kind = "request"
)

// GenericMessage is shown when the remote gave no usable error detail.
const GenericMessage = "Something went wrong"

// APIError represents a custom error type for API responses
type APIError struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Error returns the error message
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code, message string, status int, details ...string) *APIError {
	err := &APIError{
		Kind:    KindRequest,
		Code:    code,
		Message: message,
		Status:  status,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WithKind returns a copy of e carrying kind k.
func (e *APIError) WithKind(k Kind) *APIError {
	cp := *e
	cp.Kind = k
	return &cp
}

var (
	ErrInvalidInput = NewAPIError("INVALID_INPUT", "Invalid request data", http.StatusBadRequest)
	ErrUnauthorized = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrNotFound     = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrInternal     = NewAPIError("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrConflict     = NewAPIError("CONFLICT", "Resource conflict", http.StatusConflict)
	ErrInFlight     = NewAPIError("IN_FLIGHT", "A request is already in progress", http.StatusConflict).WithKind(KindValidation)
)

func Wrap(err error, code, message string, status int) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return NewAPIError(code, message, status, err.Error())
}

// KindOf reports the Kind of err, or "" when err is not an APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err is an APIError of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// IsUnauthorized reports whether err is a request failure the remote
// answered with 401, which means the stored token is no longer accepted.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !stderrors.As(err, &apiErr) {
		return false
	}
	return apiErr.Kind == KindRequest && apiErr.Status == http.StatusUnauthorized
}

// Message returns the user-facing message for err, falling back to fallback
// when err carries none.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if stderrors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
