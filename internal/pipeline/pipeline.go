// Package pipeline runs one /stream request through verification, decoding,
// rule matching and forwarding. Every request ends in Completed or Failed and
// is recorded in the stats registry exactly once, panics included.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	apperrors "pokeproxy/internal/common/errors"
	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/decoder"
	"pokeproxy/internal/forwarder"
	"pokeproxy/internal/models"
	"pokeproxy/internal/routing"
	"pokeproxy/internal/signature"
	"pokeproxy/internal/stats"
)

// EndpointStream is the stats name of the forwarding endpoint
const EndpointStream = "stream"

// Config is the immutable input the pipeline needs at request time
type Config struct {
	// Endpoint names the stats bucket; defaults to EndpointStream
	Endpoint string
	// Secret is the base64 HMAC key. Empty means misconfigured: requests
	// fail with a server error.
	Secret string
	// Rules in match order
	Rules []models.Rule
}

// Result is what the HTTP layer writes back
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// State is Completed or Failed
	State State
	// FailedAt is the state that was active when the request failed
	FailedAt State
	// Rule is the matched rule, if matching got that far
	Rule *models.Rule
	// Err is set when State is Failed
	Err *apperrors.AppError
}

// Pipeline is safe for concurrent use. Its only shared mutable state is the
// stats registry.
type Pipeline struct {
	cfg       Config
	verifier  *signature.Verifier
	engine    *routing.RuleEngine
	forwarder forwarder.Forwarder
	stats     *stats.Registry
	logger    logging.Logger
	now       func() time.Time
}

// New wires a pipeline and registers its endpoint with the registry
func New(cfg Config, fwd forwarder.Forwarder, registry *stats.Registry, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = EndpointStream
	}
	rules := make([]models.Rule, len(cfg.Rules))
	copy(rules, cfg.Rules)
	cfg.Rules = rules

	registry.Register(cfg.Endpoint)

	return &Pipeline{
		cfg:       cfg,
		verifier:  signature.NewVerifier(logger),
		engine:    routing.NewRuleEngine(logger),
		forwarder: fwd,
		stats:     registry,
		logger:    logger.WithFields(logging.String("endpoint", cfg.Endpoint)),
		now:       time.Now,
	}
}

// Process handles one request. It never panics and always returns a result.
func (p *Pipeline) Process(r *http.Request) (res *Result) {
	start := p.now()
	logger := p.logger.WithContext(r.Context())
	state := Received
	var incoming int64

	defer func() {
		if rec := recover(); rec != nil {
			err := apperrors.InternalError("Internal server error", fmt.Errorf("panic: %v", rec))
			logger.Error("Pipeline panic recovered", err,
				logging.String("state", state.String()),
				logging.String("stack", string(debug.Stack())),
			)
			res = p.fail(state, err)
		}

		var outgoing int64
		if res.State == Completed {
			outgoing = int64(len(res.Body))
		}
		isError := res.State == Failed || res.StatusCode >= http.StatusBadRequest
		elapsed := p.now().Sub(start)
		p.stats.Record(p.cfg.Endpoint, incoming, outgoing, elapsed, isError)

		fields := []logging.Field{
			logging.String("state", res.State.String()),
			logging.Int("status", res.StatusCode),
			logging.Int64("incoming_bytes", incoming),
			logging.Int64("outgoing_bytes", outgoing),
			logging.Duration("elapsed", elapsed),
		}
		if res.Rule != nil {
			fields = append(fields, logging.String("rule_reason", res.Rule.Reason))
		}
		if res.Err != nil {
			fields = append(fields, logging.String("failed_at", res.FailedAt.String()), logging.Err(res.Err))
			logger.Warn("Stream request failed", fields...)
			return
		}
		logger.Info("Stream request relayed", fields...)
	}()

	body, err := io.ReadAll(r.Body)
	incoming = int64(len(body))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return p.fail(state, apperrors.BadRequestError(
				fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), err))
		}
		return p.fail(state, apperrors.BadRequestError("Unable to read request body", err))
	}

	state = Verifying
	sig := r.Header.Get(signature.Header)
	if sig == "" {
		return p.fail(state, apperrors.UnauthorizedError("Missing signature header"))
	}
	if p.cfg.Secret == "" {
		return p.fail(state, apperrors.ConfigError("HMAC_SECRET environment variable not set"))
	}
	if !p.verifier.Verify(body, sig, p.cfg.Secret) {
		return p.fail(state, apperrors.UnauthorizedError("Invalid signature"))
	}

	state = Decoding
	record, err := decoder.Decode(body, r.Header.Get("Content-Type"))
	if err != nil {
		return p.fail(state, apperrors.BadRequestError(err.Error(), err))
	}

	state = Matching
	rule, ok := p.engine.Match(record, p.cfg.Rules)
	if !ok {
		return p.fail(state, apperrors.NoRouteError("No matching rule found").
			WithContext("record", record.String()))
	}

	state = Forwarding
	upstream, err := p.forwarder.Forward(r.Context(), record, rule, r.Header)
	if err != nil {
		res = p.fail(state, forwardError(err))
		res.Rule = rule
		return res
	}

	return &Result{
		StatusCode: upstream.StatusCode,
		Header:     upstream.Header,
		Body:       upstream.Body,
		State:      Completed,
		FailedAt:   Completed,
		Rule:       rule,
	}
}

func forwardError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, forwarder.ErrUpstreamTimeout):
		return apperrors.UpstreamTimeoutError("Upstream request timed out", err)
	case errors.Is(err, forwarder.ErrUpstream):
		return apperrors.UpstreamError("Upstream request failed", err)
	default:
		return apperrors.InternalError("Internal server error", err)
	}
}

func (p *Pipeline) fail(at State, err *apperrors.AppError) *Result {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	return &Result{
		StatusCode: err.HTTPStatus(),
		Header:     header,
		Body:       err.ResponseBody(),
		State:      Failed,
		FailedAt:   at,
		Err:        err,
	}
}
