// Package metrics provides metrics recording and reporting for the service.
// Counters are kept in memory and periodically written to Redis so the API
// can serve a consolidated view. The null object pattern avoids nil checks
// at every call site.
package metrics

import "time"

// Recorder defines the interface for recording dispatch metrics.
// Implementations can record to various backends (Redis, Prometheus, etc.)
type Recorder interface {
	// RecordReceived increments the count of received events.
	RecordReceived()

	// RecordProcessed records a fully processed event with its latency.
	RecordProcessed(latency time.Duration)

	// RecordPublished increments the count of published events.
	RecordPublished()

	// RecordError increments the error counter.
	RecordError()

	// RecordSkipped increments the count of skipped deliveries
	// (inactive subscription or below the severity threshold).
	RecordSkipped()

	// RecordFailed increments the count of failed deliveries.
	RecordFailed()

	// RecordSent increments the count of successful deliveries.
	RecordSent()
}

// NoOp is a no-op implementation of Recorder that discards all metrics.
// Use this when metrics collection is not configured.
type NoOp struct{}

// NewNoOp creates a new no-op metrics recorder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) RecordReceived()                 {}
func (n *NoOp) RecordProcessed(_ time.Duration) {}
func (n *NoOp) RecordPublished()                {}
func (n *NoOp) RecordError()                    {}
func (n *NoOp) RecordSkipped()                  {}
func (n *NoOp) RecordFailed()                   {}
func (n *NoOp) RecordSent()                     {}

// Ensure NoOp implements Recorder
var _ Recorder = (*NoOp)(nil)
