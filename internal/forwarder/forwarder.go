// Package forwarder sends a matched record to its rule's destination and
// hands the destination's answer back unchanged.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	commonhttp "pokeproxy/internal/common/http"
	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/models"
	"pokeproxy/internal/signature"
)

// ReasonHeader carries the matched rule's reason to the destination
const ReasonHeader = "X-Grd-Reason"

// UpstreamResponse is the destination's answer, relayed as-is
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Forwarder delivers a record to the destination of a matched rule
type Forwarder interface {
	Forward(ctx context.Context, record *models.Pokemon, rule *models.Rule, inbound http.Header) (*UpstreamResponse, error)
}

// HTTPForwarder posts records as JSON. One Forward call makes exactly one
// request: no retries, no caching.
type HTTPForwarder struct {
	client *http.Client
	logger logging.Logger
}

// New creates a forwarder with a TLS-verifying client bounded by timeout.
// Extra client options are applied after the defaults.
func New(timeout time.Duration, logger logging.Logger, opts ...commonhttp.ClientOption) *HTTPForwarder {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	options := append([]commonhttp.ClientOption{
		commonhttp.WithTimeout(timeout),
		commonhttp.WithoutRedirects(),
	}, opts...)

	return &HTTPForwarder{
		client: commonhttp.NewHTTPClient(options...),
		logger: logger,
	}
}

// Forward posts record to rule.URL. The call is bound to ctx, so a caller
// that goes away cancels it.
func (f *HTTPForwarder) Forward(ctx context.Context, record *models.Pokemon, rule *models.Rule, inbound http.Header) (*UpstreamResponse, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rule.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}

	req.Header = copyHeaders(inbound, signature.Header, "Host", "Content-Length", "Content-Encoding")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ReasonHeader, rule.Reason)

	logger := f.logger.WithContext(ctx)
	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Warn("Forward request failed",
			logging.String("url", rule.URL),
			logging.Duration("elapsed", time.Since(start)),
			logging.Err(err),
		)
		return nil, classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(fmt.Errorf("read response body: %w", err))
	}

	logger.Debug("Forward request completed",
		logging.String("url", rule.URL),
		logging.Int("status", resp.StatusCode),
		logging.Int("response_bytes", len(body)),
		logging.Duration("elapsed", time.Since(start)),
	)

	return &UpstreamResponse{
		StatusCode: resp.StatusCode,
		Header:     copyHeaders(resp.Header, "Content-Length"),
		Body:       body,
	}, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
