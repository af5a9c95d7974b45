package handlers

import (
	"github.com/ctheara/event-notification-service/internal/metrics"
)

// Handlers wraps dependencies for the HTTP handlers.
type Handlers struct {
	db            Repository
	publisher     EventPublisher
	metricsReader MetricsReader
	recorder      metrics.Recorder
}

// Option is a functional option for configuring Handlers.
type Option func(*Handlers)

// WithMetricsReader sets the reader backing the service metrics endpoint.
// Without one the endpoint reports that metrics are not configured.
func WithMetricsReader(r MetricsReader) Option {
	return func(h *Handlers) {
		h.metricsReader = r
	}
}

// WithRecorder sets the metrics recorder for API-side counters.
func WithRecorder(rec metrics.Recorder) Option {
	return func(h *Handlers) {
		if rec != nil {
			h.recorder = rec
		}
	}
}

// NewHandlers creates a new handlers instance. The recorder defaults to a
// no-op so call sites never need nil checks.
func NewHandlers(db Repository, publisher EventPublisher, opts ...Option) *Handlers {
	h := &Handlers{
		db:        db,
		publisher: publisher,
		recorder:  metrics.NewNoOp(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
