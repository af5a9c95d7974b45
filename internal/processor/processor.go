package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
	"github.com/ctheara/event-notification-service/internal/metrics"
	"github.com/ctheara/event-notification-service/internal/retry"
)

const (
	// DefaultMaxConcurrentDeliveries bounds how many channel deliveries for
	// a single event run in parallel.
	DefaultMaxConcurrentDeliveries = 8
	// DefaultDeliveryTimeout bounds a single channel delivery.
	DefaultDeliveryTimeout = 30 * time.Second
	// DefaultRecordTimeout bounds a single audit write.
	DefaultRecordTimeout = 5 * time.Second
)

// DeliveryReport summarizes the dispatch of one event. Attempted counts only
// deliveries that were actually started; Sent plus Failed equals Attempted.
type DeliveryReport struct {
	EventID   string
	Attempted int
	Sent      int
	Failed    int
}

// Processor orchestrates event dispatch: it persists the event, finds the
// matching subscriptions, fans deliveries out to the channels and records
// every attempt's outcome.
type Processor struct {
	store     EventStore
	finder    CandidateFinder
	audit     AuditRecorder
	deliverer Deliverer
	metrics   metrics.Recorder

	maxConcurrent   int
	deliveryTimeout time.Duration
	recordTimeout   time.Duration
}

// Option configures a Processor.
type Option func(*Processor)

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithMaxConcurrentDeliveries bounds parallel deliveries per event.
func WithMaxConcurrentDeliveries(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxConcurrent = n
		}
	}
}

// WithDeliveryTimeout bounds a single channel delivery.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.deliveryTimeout = d
		}
	}
}

// WithRecordTimeout bounds a single audit write.
func WithRecordTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.recordTimeout = d
		}
	}
}

// New creates an event dispatch processor.
func New(store EventStore, finder CandidateFinder, audit AuditRecorder, deliverer Deliverer, opts ...Option) *Processor {
	p := &Processor{
		store:           store,
		finder:          finder,
		audit:           audit,
		deliverer:       deliverer,
		metrics:         metrics.NewNoOp(),
		maxConcurrent:   DefaultMaxConcurrentDeliveries,
		deliveryTimeout: DefaultDeliveryTimeout,
		recordTimeout:   DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process dispatches a single event end to end. The event is persisted
// before anything else; persistence and candidate lookup failures abort the
// whole event so the queue can redeliver it. Individual delivery failures do
// not: each eligible subscription gets its own attempt and its own audit
// record, and the report counts the outcomes.
func (p *Processor) Process(ctx context.Context, ev *events.Event) (*DeliveryReport, error) {
	if err := p.store.MarkEventProcessed(ctx, ev, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to persist event %s: %w", ev.EventID, err)
	}

	report := &DeliveryReport{EventID: ev.EventID}

	// An event carrying an unknown severity can never meet any threshold.
	// Warn once instead of once per subscription.
	if _, err := events.SeverityRank(ev.Severity); err != nil {
		slog.Warn("Event severity is invalid, no subscriptions will match",
			"event_id", ev.EventID,
			"severity", ev.Severity)
		return report, nil
	}

	candidates, err := p.finder.FindCandidates(ctx, ev.EventType)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for event %s: %w", ev.EventID, err)
	}

	eligible := p.filterEligible(ev, candidates)
	if len(eligible) == 0 {
		slog.Debug("No eligible subscriptions for event",
			"event_id", ev.EventID,
			"event_type", ev.EventType,
			"candidates", len(candidates))
		return report, nil
	}

	sem := make(chan struct{}, p.maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var ctxErr error

launch:
	for _, sub := range eligible {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Deliveries not yet started are left unattempted and
			// unrecorded; the queue will redeliver the event.
			ctxErr = ctx.Err()
			break launch
		}

		report.Attempted++
		wg.Add(1)
		go func(sub database.Subscription) {
			defer wg.Done()
			defer func() { <-sem }()

			sent := p.deliverOne(ctx, &sub, ev)

			mu.Lock()
			if sent {
				report.Sent++
			} else {
				report.Failed++
			}
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	if ctxErr != nil {
		slog.Warn("Dispatch interrupted before all deliveries were attempted",
			"event_id", ev.EventID,
			"eligible", len(eligible),
			"attempted", report.Attempted)
		return report, fmt.Errorf("dispatch interrupted for event %s: %w", ev.EventID, ctxErr)
	}

	slog.Info("Event dispatched",
		"event_id", ev.EventID,
		"event_type", ev.EventType,
		"attempted", report.Attempted,
		"sent", report.Sent,
		"failed", report.Failed)

	return report, nil
}

// filterEligible narrows candidates down to active subscriptions whose
// severity filter the event meets. A subscription with an unparseable filter
// is skipped with a warning rather than failing the event.
func (p *Processor) filterEligible(ev *events.Event, candidates []database.Subscription) []database.Subscription {
	eligible := make([]database.Subscription, 0, len(candidates))
	for _, sub := range candidates {
		if !sub.Active {
			slog.Debug("Skipping inactive subscription",
				"event_id", ev.EventID,
				"subscription_id", sub.SubscriptionID)
			p.metrics.RecordSkipped()
			continue
		}

		meets, err := events.MeetsThreshold(ev.Severity, sub.SeverityFilter)
		if err != nil {
			slog.Warn("Skipping subscription with invalid severity filter",
				"event_id", ev.EventID,
				"subscription_id", sub.SubscriptionID,
				"severity_filter", sub.SeverityFilter,
				"error", err)
			p.metrics.RecordSkipped()
			continue
		}
		if !meets {
			slog.Debug("Event below subscription severity threshold",
				"event_id", ev.EventID,
				"subscription_id", sub.SubscriptionID,
				"severity", ev.Severity,
				"severity_filter", sub.SeverityFilter)
			p.metrics.RecordSkipped()
			continue
		}

		eligible = append(eligible, sub)
	}
	return eligible
}

// deliverOne performs a single delivery attempt and records its outcome.
// Returns true when the delivery succeeded.
func (p *Processor) deliverOne(ctx context.Context, sub *database.Subscription, ev *events.Event) bool {
	deliveryCtx, cancel := context.WithTimeout(ctx, p.deliveryTimeout)
	defer cancel()

	err := p.deliverer.Deliver(deliveryCtx, sub, ev)

	rec := &database.NotificationRecord{
		EventID:        ev.EventID,
		SubscriptionID: sub.SubscriptionID,
		Channel:        sub.Channel,
		Target:         sub.Target,
		Status:         database.StatusSent,
		AttemptedAt:    time.Now().UTC(),
	}
	if err != nil {
		rec.Status = database.StatusFailed
		rec.ErrorMessage = err.Error()
		slog.Error("Delivery failed",
			"event_id", ev.EventID,
			"subscription_id", sub.SubscriptionID,
			"channel", sub.Channel,
			"error", err)
		p.metrics.RecordFailed()
	} else {
		slog.Info("Delivery succeeded",
			"event_id", ev.EventID,
			"subscription_id", sub.SubscriptionID,
			"channel", sub.Channel)
		p.metrics.RecordSent()
	}

	p.recordAttempt(rec)

	return err == nil
}

// recordAttempt writes the audit record for an attempt that actually
// happened. It runs on a detached context so a spent dispatch deadline
// cannot lose the outcome, and retries transient storage errors. A write
// that still fails is logged and counted, never fatal.
func (p *Processor) recordAttempt(rec *database.NotificationRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), p.recordTimeout)
	defer cancel()

	operation := fmt.Sprintf("record_%s_%s", rec.EventID, rec.SubscriptionID)
	err := retry.WithRetry(ctx, retry.DefaultConfig(), operation, func() error {
		return p.audit.RecordAttempt(ctx, rec)
	})
	if err != nil {
		slog.Error("Failed to record delivery outcome",
			"event_id", rec.EventID,
			"subscription_id", rec.SubscriptionID,
			"status", rec.Status,
			"error", err)
		p.metrics.RecordError()
	}
}
