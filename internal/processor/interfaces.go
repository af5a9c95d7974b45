// Package processor provides event dispatch orchestration.
package processor

import (
	"context"
	"time"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"

	"github.com/segmentio/kafka-go"
)

// EventStore persists event processing state.
type EventStore interface {
	MarkEventProcessed(ctx context.Context, ev *events.Event, processedAt time.Time) error
}

// CandidateFinder returns the subscriptions registered for an event type.
type CandidateFinder interface {
	FindCandidates(ctx context.Context, eventType string) ([]database.Subscription, error)
}

// AuditRecorder durably records the outcome of a delivery attempt.
type AuditRecorder interface {
	RecordAttempt(ctx context.Context, rec *database.NotificationRecord) error
}

// Deliverer dispatches an event to a subscription's channel.
type Deliverer interface {
	Deliver(ctx context.Context, sub *database.Subscription, ev *events.Event) error
}

// MessageSource reads and commits queue messages.
type MessageSource interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
