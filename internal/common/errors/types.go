// Package errors defines the proxy's error taxonomy. Every failure that leaves
// the request pipeline is an *AppError whose Type decides the HTTP status.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorType represents the category of a failure
type ErrorType string

const (
	// ErrTypeUnauthorized covers a missing or invalid signature
	ErrTypeUnauthorized ErrorType = "unauthorized"
	// ErrTypeBadRequest covers payloads that do not decode into a record
	ErrTypeBadRequest ErrorType = "bad_request"
	// ErrTypeNoRoute means no rule matched the record
	ErrTypeNoRoute ErrorType = "no_route_matched"
	// ErrTypeUpstream covers transport failures toward the matched destination
	ErrTypeUpstream ErrorType = "upstream_failure"
	// ErrTypeUpstreamTimeout means the destination did not answer in time
	ErrTypeUpstreamTimeout ErrorType = "upstream_timeout"
	// ErrTypeConfig covers missing or invalid server configuration
	ErrTypeConfig ErrorType = "config"
	// ErrTypeInternal covers anything unexpected
	ErrTypeInternal ErrorType = "internal"
	// ErrTypeRateLimit is returned before a request enters the pipeline
	ErrTypeRateLimit ErrorType = "rate_limit"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	parts := []string{string(e.Type), e.Message}

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("code=%s", e.Code))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%v", e.Cause))
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		contextParts := make([]string, 0, len(keys))
		for _, k := range keys {
			contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context={%s}", strings.Join(contextParts, ", ")))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// HTTPStatus maps the error type to the response status code
func (e *AppError) HTTPStatus() int {
	switch e.Type {
	case ErrTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrTypeBadRequest:
		return http.StatusBadRequest
	case ErrTypeNoRoute:
		return http.StatusNotFound
	case ErrTypeUpstream:
		return http.StatusBadGateway
	case ErrTypeUpstreamTimeout:
		return http.StatusGatewayTimeout
	case ErrTypeRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// UnauthorizedError creates a new unauthorized error
func UnauthorizedError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeUnauthorized,
		Message: msg,
	}
}

// BadRequestError creates a new bad request error
func BadRequestError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeBadRequest,
		Message: msg,
		Cause:   cause,
	}
}

// NoRouteError creates a new no-route-matched error
func NoRouteError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeNoRoute,
		Message: msg,
	}
}

// UpstreamError creates a new upstream failure error
func UpstreamError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeUpstream,
		Message: msg,
		Cause:   cause,
	}
}

// UpstreamTimeoutError creates a new upstream timeout error
func UpstreamTimeoutError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeUpstreamTimeout,
		Message: msg,
		Cause:   cause,
	}
}

// ConfigError creates a new configuration error
func ConfigError(msg string) *AppError {
	return &AppError{
		Type:    ErrTypeConfig,
		Message: msg,
	}
}

// InternalError creates a new internal error
func InternalError(msg string, cause error) *AppError {
	return &AppError{
		Type:    ErrTypeInternal,
		Message: msg,
		Cause:   cause,
	}
}

// RateLimitError creates a new rate limit error
func RateLimitError(resource string) *AppError {
	return &AppError{
		Type:    ErrTypeRateLimit,
		Message: fmt.Sprintf("rate limit exceeded for %s", resource),
	}
}

// As returns the first *AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

// GetType returns the error type if it's an AppError, otherwise returns ErrTypeInternal
func GetType(err error) ErrorType {
	if err == nil {
		return ""
	}

	appErr, ok := As(err)
	if !ok {
		return ErrTypeInternal
	}

	return appErr.Type
}
