package database

import (
	"time"

	"github.com/ctheara/event-notification-service/internal/events"
)

// Notification statuses recorded per delivery attempt.
const (
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

// Subscription represents a row from the subscriptions table. Field names
// follow the public API contract.
type Subscription struct {
	SubscriptionID string    `json:"subscriptionId"`
	EventType      string    `json:"eventType"`
	SeverityFilter string    `json:"severityFilter"`
	Channel        string    `json:"channel"`
	Target         string    `json:"target"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// EventRecord is a persisted event together with its processing timestamp.
type EventRecord struct {
	events.Event
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// NotificationRecord is the audit record for one delivery attempt, keyed by
// (event_id, subscription_id). Reprocessing an event overwrites the record
// for the same pair rather than creating a duplicate.
type NotificationRecord struct {
	EventID        string    `json:"eventId"`
	SubscriptionID string    `json:"subscriptionId"`
	Channel        string    `json:"channel"`
	Target         string    `json:"target"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	AttemptedAt    time.Time `json:"attemptedAt"`
}
