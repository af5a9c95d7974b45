package metrics

import "time"

// CollectorAdapter adapts a Collector to the Recorder interface. Delivery
// outcomes land in custom counters so the shared ServiceMetrics shape stays
// the same for every service.
type CollectorAdapter struct {
	collector *Collector
}

// NewCollectorAdapter wraps a Collector to implement Recorder.
func NewCollectorAdapter(collector *Collector) *CollectorAdapter {
	return &CollectorAdapter{collector: collector}
}

func (a *CollectorAdapter) RecordReceived() {
	a.collector.RecordReceived()
}

func (a *CollectorAdapter) RecordProcessed(latency time.Duration) {
	a.collector.RecordProcessed(latency)
}

func (a *CollectorAdapter) RecordPublished() {
	a.collector.RecordPublished()
}

func (a *CollectorAdapter) RecordError() {
	a.collector.RecordError()
}

func (a *CollectorAdapter) RecordSkipped() {
	a.collector.IncrementCustom("deliveries_skipped")
}

func (a *CollectorAdapter) RecordFailed() {
	a.collector.IncrementCustom("deliveries_failed")
}

func (a *CollectorAdapter) RecordSent() {
	a.collector.IncrementCustom("deliveries_sent")
}

// Ensure CollectorAdapter implements Recorder
var _ Recorder = (*CollectorAdapter)(nil)
