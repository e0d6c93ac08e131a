package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"pokeproxy/internal/common/errors"
	"pokeproxy/internal/common/logging"
)

// Recovery turns a handler panic into a 500 JSON response
func Recovery(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Let net/http abort the connection as it normally would.
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := errors.InternalError("Internal server error", fmt.Errorf("panic: %v", rec))
				logger.WithContext(r.Context()).Error("Handler panic recovered", err,
					logging.String("method", r.Method),
					logging.String("path", r.URL.Path),
					logging.String("stack", string(debug.Stack())))
				errors.WriteHTTP(w, err)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
