package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pokeproxy/internal/common/logging"
)

// Reporter logs a registry snapshot on a cron schedule
type Reporter struct {
	registry *Registry
	logger   logging.Logger
	cron     *cron.Cron
	schedule string

	mu      sync.Mutex
	running bool
	runs    int
}

// NewReporter validates schedule (standard five-field cron or a descriptor
// such as "@every 1m") and returns a stopped reporter
func NewReporter(registry *Registry, schedule string, logger logging.Logger) (*Reporter, error) {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	r := &Reporter{
		registry: registry,
		logger:   logger.WithFields(logging.String("component", "stats_reporter")),
		cron:     cron.New(),
		schedule: schedule,
	}

	if _, err := r.cron.AddFunc(schedule, r.Report); err != nil {
		return nil, fmt.Errorf("invalid stats report schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start begins running the schedule in the background
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	r.running = true
	r.cron.Start()

	r.logger.Info("Stats reporter started", logging.String("schedule", r.schedule))
}

// Stop halts the schedule and waits for a running report to finish or ctx to
// expire
func (r *Reporter) Stop(ctx context.Context) {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
	r.logger.Info("Stats reporter stopped")
}

// Report logs one line per endpoint with the current counters
func (r *Reporter) Report() {
	r.mu.Lock()
	r.runs++
	r.mu.Unlock()

	for _, name := range r.registry.Endpoints() {
		s := r.registry.Get(name)
		r.logger.Info("Endpoint stats",
			logging.String("endpoint", name),
			logging.Int64("request_count", s.RequestCount),
			logging.Int64("error_count", s.ErrorCount),
			logging.Float64("error_rate", s.ErrorRate),
			logging.Int64("incoming_bytes", s.IncomingBytes),
			logging.Int64("outgoing_bytes", s.OutgoingBytes),
			logging.Duration("average_response_time", time.Duration(s.AverageResponseTime*float64(time.Second))),
			logging.Float64("uptime_seconds", s.UptimeSeconds),
		)
	}
}

// Runs returns how many reports have been written
func (r *Reporter) Runs() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}
