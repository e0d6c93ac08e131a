package handlers

import (
	"net/http"
)

// GetStats returns per-endpoint counters
// @Summary Get endpoint statistics
// @Description Returns request_count, error_count, error_rate, incoming_bytes, outgoing_bytes, average_response_time and uptime_seconds for every endpoint.
// @Tags statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]stats.EndpointStats "Statistics keyed by endpoint"
// @Failure 401 {object} errors.Response "Missing or invalid bearer token"
// @Router /stats [get]
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.stats.Snapshot())
}

// HealthCheck reports liveness
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
