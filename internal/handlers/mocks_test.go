// Package handlers provides test mocks for handler dependencies.
package handlers

import (
	"context"
	"time"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
	"github.com/ctheara/event-notification-service/internal/metrics"
)

// mockRepository implements Repository for testing. Set the callback for a
// method to control its behavior; unset callbacks return benign defaults.
type mockRepository struct {
	GetEventFn              func(ctx context.Context, eventID string) (*database.EventRecord, error)
	ListEventsFn            func(ctx context.Context, limit, offset int) ([]database.EventRecord, error)
	CreateSubscriptionFn    func(ctx context.Context, sub *database.Subscription) error
	GetSubscriptionFn       func(ctx context.Context, subscriptionID string) (*database.Subscription, error)
	ListSubscriptionsFn     func(ctx context.Context, eventType string, limit, offset int) ([]database.Subscription, error)
	UpdateSubscriptionFn    func(ctx context.Context, sub *database.Subscription) error
	SetSubscriptionActiveFn func(ctx context.Context, subscriptionID string, active bool) error
	DeleteSubscriptionFn    func(ctx context.Context, subscriptionID string) error
	GetNotificationFn       func(ctx context.Context, eventID, subscriptionID string) (*database.NotificationRecord, error)
	ListNotificationsFn     func(ctx context.Context, filter database.NotificationFilter, limit, offset int) ([]database.NotificationRecord, error)
}

func (m *mockRepository) GetEvent(ctx context.Context, eventID string) (*database.EventRecord, error) {
	if m.GetEventFn != nil {
		return m.GetEventFn(ctx, eventID)
	}
	return &database.EventRecord{
		Event: events.Event{
			EventID:    eventID,
			EventType:  "deployment",
			Severity:   events.SeverityHigh,
			Title:      "test event",
			ReceivedAt: time.Now().UTC(),
			Status:     events.StatusProcessed,
		},
	}, nil
}

func (m *mockRepository) ListEvents(ctx context.Context, limit, offset int) ([]database.EventRecord, error) {
	if m.ListEventsFn != nil {
		return m.ListEventsFn(ctx, limit, offset)
	}
	return []database.EventRecord{}, nil
}

func (m *mockRepository) CreateSubscription(ctx context.Context, sub *database.Subscription) error {
	if m.CreateSubscriptionFn != nil {
		return m.CreateSubscriptionFn(ctx, sub)
	}
	return nil
}

func (m *mockRepository) GetSubscription(ctx context.Context, subscriptionID string) (*database.Subscription, error) {
	if m.GetSubscriptionFn != nil {
		return m.GetSubscriptionFn(ctx, subscriptionID)
	}
	return &database.Subscription{
		SubscriptionID: subscriptionID,
		EventType:      "deployment",
		SeverityFilter: events.SeverityMedium,
		Channel:        events.ChannelEmail,
		Target:         "ops@example.com",
		Active:         true,
	}, nil
}

func (m *mockRepository) ListSubscriptions(ctx context.Context, eventType string, limit, offset int) ([]database.Subscription, error) {
	if m.ListSubscriptionsFn != nil {
		return m.ListSubscriptionsFn(ctx, eventType, limit, offset)
	}
	return []database.Subscription{}, nil
}

func (m *mockRepository) UpdateSubscription(ctx context.Context, sub *database.Subscription) error {
	if m.UpdateSubscriptionFn != nil {
		return m.UpdateSubscriptionFn(ctx, sub)
	}
	return nil
}

func (m *mockRepository) SetSubscriptionActive(ctx context.Context, subscriptionID string, active bool) error {
	if m.SetSubscriptionActiveFn != nil {
		return m.SetSubscriptionActiveFn(ctx, subscriptionID, active)
	}
	return nil
}

func (m *mockRepository) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	if m.DeleteSubscriptionFn != nil {
		return m.DeleteSubscriptionFn(ctx, subscriptionID)
	}
	return nil
}

func (m *mockRepository) GetNotification(ctx context.Context, eventID, subscriptionID string) (*database.NotificationRecord, error) {
	if m.GetNotificationFn != nil {
		return m.GetNotificationFn(ctx, eventID, subscriptionID)
	}
	return &database.NotificationRecord{
		EventID:        eventID,
		SubscriptionID: subscriptionID,
		Channel:        events.ChannelEmail,
		Target:         "ops@example.com",
		Status:         database.StatusSent,
		AttemptedAt:    time.Now().UTC(),
	}, nil
}

func (m *mockRepository) ListNotifications(ctx context.Context, filter database.NotificationFilter, limit, offset int) ([]database.NotificationRecord, error) {
	if m.ListNotificationsFn != nil {
		return m.ListNotificationsFn(ctx, filter, limit, offset)
	}
	return []database.NotificationRecord{}, nil
}

// mockPublisher implements EventPublisher for testing.
type mockPublisher struct {
	PublishFn func(ctx context.Context, ev *events.Event) error
	published []*events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, ev *events.Event) error {
	if m.PublishFn != nil {
		if err := m.PublishFn(ctx, ev); err != nil {
			return err
		}
	}
	m.published = append(m.published, ev)
	return nil
}

// mockMetricsReader implements MetricsReader for testing.
type mockMetricsReader struct {
	GetServiceMetricsFn    func(ctx context.Context, serviceName string) (*metrics.ServiceMetrics, error)
	GetAllServiceMetricsFn func(ctx context.Context) (map[string]*metrics.ServiceMetrics, error)
}

func (m *mockMetricsReader) GetServiceMetrics(ctx context.Context, serviceName string) (*metrics.ServiceMetrics, error) {
	if m.GetServiceMetricsFn != nil {
		return m.GetServiceMetricsFn(ctx, serviceName)
	}
	return &metrics.ServiceMetrics{ServiceName: serviceName, Status: "healthy"}, nil
}

func (m *mockMetricsReader) GetAllServiceMetrics(ctx context.Context) (map[string]*metrics.ServiceMetrics, error) {
	if m.GetAllServiceMetricsFn != nil {
		return m.GetAllServiceMetricsFn(ctx)
	}
	return map[string]*metrics.ServiceMetrics{}, nil
}

// Compile-time interface checks.
var (
	_ Repository     = (*mockRepository)(nil)
	_ EventPublisher = (*mockPublisher)(nil)
	_ MetricsReader  = (*mockMetricsReader)(nil)
)
