package handlers

import (
	"net/http"

	"pokeproxy/internal/common/logging"
)

// HandleStream verifies, routes and forwards one record
// @Summary Forward a signed record
// @Description Verifies the X-Grd-Signature HMAC of the body, decodes the record (JSON, or protobuf with Content-Type application/x-protobuf), forwards it to the first matching rule and relays the destination's response.
// @Tags stream
// @Accept json
// @Produce json
// @Param X-Grd-Signature header string true "Hex HMAC-SHA256 of the body"
// @Success 200 {object} map[string]interface{} "Destination response, relayed verbatim"
// @Failure 400 {object} errors.Response "Record could not be decoded"
// @Failure 401 {object} errors.Response "Missing or invalid signature"
// @Failure 404 {object} errors.Response "No matching rule found"
// @Failure 429 {object} errors.Response "Rate limit exceeded"
// @Failure 500 {object} errors.Response "Server misconfigured or internal failure"
// @Failure 502 {object} errors.Response "Destination unreachable"
// @Failure 504 {object} errors.Response "Destination timed out"
// @Router /stream [post]
func (h *Handlers) HandleStream(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	res := h.pipeline.Process(r)

	for name, values := range res.Header {
		w.Header()[name] = values
	}
	w.WriteHeader(res.StatusCode)
	if _, err := w.Write(res.Body); err != nil {
		h.logger.WithContext(r.Context()).Warn("Failed to write stream response", logging.Err(err))
	}
}
