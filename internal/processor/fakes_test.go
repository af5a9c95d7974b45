package processor

import (
	"context"
	"sync"
	"time"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"

	"github.com/segmentio/kafka-go"
)

// fakeEventStore is a test fake for EventStore.
type fakeEventStore struct {
	mu     sync.Mutex
	marked []*events.Event
	err    error
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{}
}

func (f *fakeEventStore) MarkEventProcessed(ctx context.Context, ev *events.Event, processedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, ev)
	return nil
}

func (f *fakeEventStore) markedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.marked)
}

// fakeFinder is a test fake for CandidateFinder.
type fakeFinder struct {
	mu      sync.Mutex
	subs    []database.Subscription
	err     error
	queried []string
}

func newFakeFinder(subs ...database.Subscription) *fakeFinder {
	return &fakeFinder{subs: subs}
}

func (f *fakeFinder) FindCandidates(ctx context.Context, eventType string) ([]database.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, eventType)
	if f.err != nil {
		return nil, f.err
	}
	return f.subs, nil
}

func (f *fakeFinder) queriedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queried)
}

// fakeAudit is a test fake for AuditRecorder.
type fakeAudit struct {
	mu      sync.Mutex
	records []*database.NotificationRecord
	err     error
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{}
}

func (f *fakeAudit) RecordAttempt(ctx context.Context, rec *database.NotificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeAudit) recorded() []*database.NotificationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*database.NotificationRecord, len(f.records))
	copy(out, f.records)
	return out
}

func (f *fakeAudit) findRecord(subscriptionID string) *database.NotificationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.SubscriptionID == subscriptionID {
			return rec
		}
	}
	return nil
}

// fakeDeliverer is a test fake for Deliverer. It tracks which subscriptions
// were delivered to and how many deliveries ran in parallel.
type fakeDeliverer struct {
	mu          sync.Mutex
	delivered   []string
	errBySub    map[string]error
	delay       time.Duration
	blockOnCtx  bool
	inFlight    int
	maxInFlight int
}

func newFakeDeliverer() *fakeDeliverer {
	return &fakeDeliverer{errBySub: make(map[string]error)}
}

func (f *fakeDeliverer) Deliver(ctx context.Context, sub *database.Subscription, ev *events.Event) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.blockOnCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivered = append(f.delivered, sub.SubscriptionID)
	return f.errBySub[sub.SubscriptionID]
}

func (f *fakeDeliverer) deliveredTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.delivered))
	copy(out, f.delivered)
	return out
}

// fakeMetrics is a test fake for metrics.Recorder.
type fakeMetrics struct {
	mu        sync.Mutex
	received  int
	processed int
	published int
	errors    int
	skipped   int
	failed    int
	sent      int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{}
}

func (f *fakeMetrics) RecordReceived() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received++
}

func (f *fakeMetrics) RecordProcessed(latency time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed++
}

func (f *fakeMetrics) RecordPublished() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published++
}

func (f *fakeMetrics) RecordError() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors++
}

func (f *fakeMetrics) RecordSkipped() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.skipped++
}

func (f *fakeMetrics) RecordFailed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed++
}

func (f *fakeMetrics) RecordSent() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
}

func (f *fakeMetrics) counts() (received, processed, errors, skipped, failed, sent int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received, f.processed, f.errors, f.skipped, f.failed, f.sent
}

// fetchResult is a scripted FetchMessage outcome for fakeSource.
type fetchResult struct {
	msg kafka.Message
	err error
}

// fakeSource is a test fake for MessageSource. Once its scripted results are
// exhausted it blocks until the context is cancelled, like a real consumer
// waiting for messages.
type fakeSource struct {
	mu        sync.Mutex
	results   []fetchResult
	idx       int
	commitErr error
	commits   []kafka.Message
	closed    bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{}
}

func (f *fakeSource) addMessage(value []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, fetchResult{
		msg: kafka.Message{
			Topic:  "events",
			Offset: int64(len(f.results)),
			Value:  value,
		},
	})
}

func (f *fakeSource) addFetchError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, fetchResult{err: err})
}

func (f *fakeSource) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if f.idx < len(f.results) {
		r := f.results[f.idx]
		f.idx++
		f.mu.Unlock()
		return r.msg, r.err
	}
	f.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeSource) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, msgs...)
	return nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSource) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.commits)
}
