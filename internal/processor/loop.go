package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ctheara/event-notification-service/internal/events"
	"github.com/ctheara/event-notification-service/internal/metrics"
)

// Loop consumes events from the queue and dispatches each one through the
// processor. Offsets are committed only after an event is fully processed,
// so a crash mid-event means the queue redelivers it (at-least-once).
type Loop struct {
	source         MessageSource
	processor      *Processor
	metrics        metrics.Recorder
	processTimeout time.Duration
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithLoopMetrics sets the metrics recorder.
func WithLoopMetrics(m metrics.Recorder) LoopOption {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithProcessTimeout bounds the dispatch of a single event. Zero disables
// the bound.
func WithProcessTimeout(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.processTimeout = d
	}
}

// NewLoop creates an event consumption loop.
func NewLoop(source MessageSource, processor *Processor, opts ...LoopOption) *Loop {
	l := &Loop{
		source:    source,
		processor: processor,
		metrics:   metrics.NewNoOp(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run continuously fetches, dispatches and commits events until the context
// is cancelled. Fetch and commit errors are logged and the loop keeps going;
// a malformed payload or a failed dispatch stops the loop with an error and
// leaves the offset uncommitted so the event is redelivered. Cancellation is
// never an error, even when it lands in the middle of a dispatch.
func (l *Loop) Run(ctx context.Context) error {
	slog.Info("Starting event processing loop")

	for {
		select {
		case <-ctx.Done():
			slog.Info("Event processing loop stopped")
			return nil
		default:
			msg, err := l.source.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					slog.Info("Event processing loop stopped")
					return nil
				}
				slog.Error("Failed to fetch message", "error", err)
				continue
			}

			l.metrics.RecordReceived()
			start := time.Now()

			ev, err := events.ParseEvent(msg.Value)
			if err != nil {
				l.metrics.RecordError()
				return fmt.Errorf("failed to parse event at offset %d: %w", msg.Offset, err)
			}

			slog.Debug("Received event",
				"event_id", ev.EventID,
				"event_type", ev.EventType,
				"severity", ev.Severity)

			processCtx := ctx
			cancel := context.CancelFunc(func() {})
			if l.processTimeout > 0 {
				processCtx, cancel = context.WithTimeout(ctx, l.processTimeout)
			}
			report, err := l.processor.Process(processCtx, ev)
			cancel()
			if err != nil {
				// Shutdown can interrupt a dispatch mid-flight. The offset
				// stays uncommitted so the event is redelivered on restart.
				if ctx.Err() != nil {
					slog.Info("Event processing loop stopped", "event_id", ev.EventID)
					return nil
				}
				l.metrics.RecordError()
				return fmt.Errorf("failed to process event %s: %w", ev.EventID, err)
			}

			l.metrics.RecordProcessed(time.Since(start))

			slog.Debug("Event processed",
				"event_id", report.EventID,
				"attempted", report.Attempted,
				"sent", report.Sent,
				"failed", report.Failed)

			// Commit only after successful processing. A failed commit is
			// retried implicitly: the next successful commit covers it.
			if err := l.source.CommitMessages(ctx, msg); err != nil {
				slog.Error("Failed to commit offset",
					"event_id", ev.EventID,
					"offset", msg.Offset,
					"error", err)
			}
		}
	}
}
