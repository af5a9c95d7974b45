// Package handlers provides the HTTP handlers for the management API:
// event ingestion, subscription CRUD, and notification/metrics queries.
package handlers

import (
	"context"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
	"github.com/ctheara/event-notification-service/internal/metrics"
)

// Repository defines the database operations the API depends on.
// This allows handlers to be tested without a real database.
type Repository interface {
	// Event operations
	GetEvent(ctx context.Context, eventID string) (*database.EventRecord, error)
	ListEvents(ctx context.Context, limit, offset int) ([]database.EventRecord, error)

	// Subscription operations
	CreateSubscription(ctx context.Context, sub *database.Subscription) error
	GetSubscription(ctx context.Context, subscriptionID string) (*database.Subscription, error)
	ListSubscriptions(ctx context.Context, eventType string, limit, offset int) ([]database.Subscription, error)
	UpdateSubscription(ctx context.Context, sub *database.Subscription) error
	SetSubscriptionActive(ctx context.Context, subscriptionID string, active bool) error
	DeleteSubscription(ctx context.Context, subscriptionID string) error

	// Notification operations
	GetNotification(ctx context.Context, eventID, subscriptionID string) (*database.NotificationRecord, error)
	ListNotifications(ctx context.Context, filter database.NotificationFilter, limit, offset int) ([]database.NotificationRecord, error)
}

// EventPublisher defines the interface for publishing ingested events to the
// queue. This interface allows for dependency injection and easier testing.
type EventPublisher interface {
	// Publish sends an event to the incoming events topic.
	// Returns an error if serialization or publishing fails.
	Publish(ctx context.Context, ev *events.Event) error
}

// MetricsReader reads service metrics snapshots for the metrics endpoint.
type MetricsReader interface {
	GetServiceMetrics(ctx context.Context, serviceName string) (*metrics.ServiceMetrics, error)
	GetAllServiceMetrics(ctx context.Context) (map[string]*metrics.ServiceMetrics, error)
}
