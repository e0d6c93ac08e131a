// Package stats keeps per-endpoint traffic counters for the lifetime of the
// process. Nothing is persisted.
package stats

import (
	"sort"
	"sync"
	"time"
)

// EndpointStats is the read view of one endpoint's counters
type EndpointStats struct {
	RequestCount        int64   `json:"request_count"`
	ErrorCount          int64   `json:"error_count"`
	ErrorRate           float64 `json:"error_rate"`
	IncomingBytes       int64   `json:"incoming_bytes"`
	OutgoingBytes       int64   `json:"outgoing_bytes"`
	AverageResponseTime float64 `json:"average_response_time"`
	UptimeSeconds       float64 `json:"uptime_seconds"`
}

type counters struct {
	requestCount  int64
	errorCount    int64
	incomingBytes int64
	outgoingBytes int64
	responseTime  time.Duration
	startTime     time.Time
}

// Registry holds counters keyed by endpoint name. All methods are safe for
// concurrent use; each Record is applied atomically.
type Registry struct {
	mu        sync.Mutex
	endpoints map[string]*counters
	now       func() time.Time
}

// Option configures a Registry
type Option func(*Registry)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		endpoints: make(map[string]*counters),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register creates the endpoint's counters if they do not exist yet, so it
// shows up in snapshots before its first request
func (r *Registry) Register(endpoint string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endpointLocked(endpoint)
}

// Record adds one completed request to endpoint's counters
func (r *Registry) Record(endpoint string, incomingBytes, outgoingBytes int64, elapsed time.Duration, isError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.endpointLocked(endpoint)
	c.requestCount++
	if isError {
		c.errorCount++
	}
	c.incomingBytes += incomingBytes
	c.outgoingBytes += outgoingBytes
	c.responseTime += elapsed
}

// Get returns the stats for one endpoint, creating it if needed
func (r *Registry) Get(endpoint string) EndpointStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view(r.endpointLocked(endpoint), r.now())
}

// Snapshot returns the stats of every known endpoint
func (r *Registry) Snapshot() map[string]EndpointStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	out := make(map[string]EndpointStats, len(r.endpoints))
	for name, c := range r.endpoints {
		out[name] = r.view(c, now)
	}
	return out
}

// Endpoints returns the known endpoint names in sorted order
func (r *Registry) Endpoints() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.endpoints))
	for name := range r.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) endpointLocked(endpoint string) *counters {
	c, ok := r.endpoints[endpoint]
	if !ok {
		c = &counters{startTime: r.now()}
		r.endpoints[endpoint] = c
	}
	return c
}

func (r *Registry) view(c *counters, now time.Time) EndpointStats {
	s := EndpointStats{
		RequestCount:  c.requestCount,
		ErrorCount:    c.errorCount,
		IncomingBytes: c.incomingBytes,
		OutgoingBytes: c.outgoingBytes,
		UptimeSeconds: now.Sub(c.startTime).Seconds(),
	}
	if c.requestCount > 0 {
		s.ErrorRate = float64(c.errorCount) / float64(c.requestCount)
		s.AverageResponseTime = c.responseTime.Seconds() / float64(c.requestCount)
	}
	return s
}
