package handlers

import (
	"encoding/json"
	"net/http"

	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/pipeline"
	"pokeproxy/internal/stats"
)

// Handlers serves the proxy's HTTP endpoints
type Handlers struct {
	pipeline     *pipeline.Pipeline
	stats        *stats.Registry
	maxBodyBytes int64
	logger       logging.Logger
}

// New creates the handlers. maxBodyBytes <= 0 disables the body limit.
func New(p *pipeline.Pipeline, registry *stats.Registry, maxBodyBytes int64, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		pipeline:     p,
		stats:        registry,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", err)
	}
}
