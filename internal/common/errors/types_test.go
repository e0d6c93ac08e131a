package errors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{
			name:     "basic error",
			appError: UnauthorizedError("Missing signature header"),
			want:     "unauthorized: Missing signature header",
		},
		{
			name:     "error with code",
			appError: ConfigError("HMAC_SECRET environment variable not set").WithCode("CFG001"),
			want:     "config: HMAC_SECRET environment variable not set: code=CFG001",
		},
		{
			name:     "error with cause",
			appError: UpstreamError("forwarding failed", errors.New("connection refused")),
			want:     "upstream_failure: forwarding failed: cause=connection refused",
		},
		{
			name: "error with sorted context",
			appError: NoRouteError("No matching rule found").
				WithContext("rules", 3).
				WithContext("name", "Bulbasaur"),
			want: "no_route_matched: No matching rule found: context={name=Bulbasaur, rules=3}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appError.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{UnauthorizedError("x"), http.StatusUnauthorized},
		{BadRequestError("x", nil), http.StatusBadRequest},
		{NoRouteError("x"), http.StatusNotFound},
		{UpstreamError("x", nil), http.StatusBadGateway},
		{UpstreamTimeoutError("x", nil), http.StatusGatewayTimeout},
		{ConfigError("x"), http.StatusInternalServerError},
		{InternalError("x", nil), http.StatusInternalServerError},
		{RateLimitError("stream"), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := UpstreamError("forwarding failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestIsTypeAndGetType(t *testing.T) {
	wrapped := fmt.Errorf("pipeline: %w", BadRequestError("invalid record", nil))

	if !IsType(wrapped, ErrTypeBadRequest) {
		t.Error("IsType should see through fmt.Errorf wrapping")
	}
	if IsType(wrapped, ErrTypeUnauthorized) {
		t.Error("IsType matched the wrong type")
	}
	if IsType(nil, ErrTypeBadRequest) {
		t.Error("IsType(nil) should be false")
	}
	if got := GetType(wrapped); got != ErrTypeBadRequest {
		t.Errorf("GetType() = %q, want %q", got, ErrTypeBadRequest)
	}
	if got := GetType(errors.New("plain")); got != ErrTypeInternal {
		t.Errorf("GetType(plain) = %q, want %q", got, ErrTypeInternal)
	}
	if got := GetType(nil); got != "" {
		t.Errorf("GetType(nil) = %q, want empty", got)
	}
}

func TestAs(t *testing.T) {
	if _, ok := As(errors.New("plain")); ok {
		t.Error("As should not find an AppError in a plain error")
	}

	appErr, ok := As(fmt.Errorf("wrap: %w", InternalError("boom", nil)))
	if !ok || appErr.Type != ErrTypeInternal {
		t.Errorf("As() = %v, %v", appErr, ok)
	}
}

func TestWriteHTTP(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTTP(rec, UnauthorizedError(`Missing "signature" header`))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got, want := rec.Body.String(), `{"detail":"Missing \"signature\" header"}`; got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}
