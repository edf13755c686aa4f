// Package monitor maps EC2 and CloudWatch responses onto the monitor's
// JSON records.
package monitor

import (
	"context"
	"time"

	"servermonitor/internal/provider"

	"github.com/alitto/pond/v2"
)

// DefaultCallTimeout bounds each provider call when no timeout is configured
const DefaultCallTimeout = 30 * time.Second

// Service answers inventory, log, metric and control requests. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	compute     provider.ComputeAPI
	metrics     provider.MetricsAPI
	callTimeout time.Duration
	now         func() time.Time

	// unbounded; each Metrics call submits its queries as its own group
	queries pond.Pool
}

// Option configures a Service
type Option func(*Service)

// WithCallTimeout sets the per-call provider timeout
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.callTimeout = d
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service on top of the given provider clients
func NewService(compute provider.ComputeAPI, metrics provider.MetricsAPI, opts ...Option) *Service {
	s := &Service{
		compute:     compute,
		metrics:     metrics,
		callTimeout: DefaultCallTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queries = pond.NewPool(0)
	return s
}

// Close waits for in-flight metric queries and releases the worker pool
func (s *Service) Close() {
	s.queries.StopAndWait()
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.callTimeout)
}
