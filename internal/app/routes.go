package app

import (
	"net/http"

	"github.com/gorilla/mux"
	httpSwagger "github.com/swaggo/http-swagger"

	"pokeproxy/internal/common/errors"
	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/common/ratelimit"
	"pokeproxy/internal/handlers"
	"pokeproxy/internal/middleware"
	"pokeproxy/internal/pipeline"
)

// SetupRoutes configures all HTTP routes. statsGuard and rateLimiter may be
// nil.
func SetupRoutes(router *mux.Router, h *handlers.Handlers, statsGuard func(http.Handler) http.Handler, rateLimiter ratelimit.Limiter, logger logging.Logger) {
	router.Use(middleware.RequestID, middleware.Logging(logger), middleware.Recovery(logger))

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteHTTP(w, &errors.AppError{Type: errors.ErrTypeNoRoute, Message: "Not Found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"detail":"Method Not Allowed"}`))
	})

	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	var statsHandler http.Handler = http.HandlerFunc(h.GetStats)
	if statsGuard != nil {
		statsHandler = statsGuard(statsHandler)
	}
	router.Handle("/stats", statsHandler).Methods(http.MethodGet)

	// Rate limited requests are rejected before they enter the pipeline and
	// are not counted in stats.
	var streamHandler http.Handler = http.HandlerFunc(h.HandleStream)
	if rateLimiter != nil {
		streamHandler = ratelimit.HTTPMiddleware(rateLimiter, ratelimit.IPKey, pipeline.EndpointStream)(streamHandler)
	}
	router.Handle("/stream", streamHandler).Methods(http.MethodPost)
}
