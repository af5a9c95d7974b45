package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
	"github.com/ctheara/event-notification-service/internal/metrics"
)

func TestIngestEvent(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		publishErr     error
		expectedStatus int
		wantPublished  bool
	}{
		{
			name:           "valid event",
			body:           `{"eventType":"Deployment","severity":"high","title":"release v2"}`,
			expectedStatus: http.StatusAccepted,
			wantPublished:  true,
		},
		{
			name:           "valid event with details",
			body:           `{"eventType":"deployment","severity":"HIGH","title":"x","details":{"region":"us-east-1","count":3}}`,
			expectedStatus: http.StatusAccepted,
			wantPublished:  true,
		},
		{
			name:           "missing event type",
			body:           `{"severity":"HIGH","title":"x"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid severity",
			body:           `{"eventType":"deployment","severity":"URGENT","title":"x"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing title",
			body:           `{"eventType":"deployment","severity":"HIGH"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "publish failure",
			body:           `{"eventType":"deployment","severity":"HIGH","title":"x"}`,
			publishErr:     fmt.Errorf("broker unreachable"),
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{}
			if tt.publishErr != nil {
				pub.PublishFn = func(ctx context.Context, ev *events.Event) error {
					return tt.publishErr
				}
			}
			h := NewHandlers(&mockRepository{}, pub)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/events", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.IngestEvent(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}

			if !tt.wantPublished {
				if len(pub.published) != 0 {
					t.Errorf("published %d events, want 0", len(pub.published))
				}
				return
			}

			if len(pub.published) != 1 {
				t.Fatalf("published %d events, want 1", len(pub.published))
			}
			ev := pub.published[0]
			if ev.EventID == "" {
				t.Error("event ID not assigned")
			}
			if ev.EventType != "deployment" {
				t.Errorf("eventType = %q, want normalized %q", ev.EventType, "deployment")
			}
			if ev.Severity != events.SeverityHigh {
				t.Errorf("severity = %q, want %q", ev.Severity, events.SeverityHigh)
			}
			if ev.Status != events.StatusPending {
				t.Errorf("status = %q, want %q", ev.Status, events.StatusPending)
			}
			if ev.ReceivedAt.IsZero() {
				t.Error("receivedAt not assigned")
			}

			var resp events.Event
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not a valid event: %v", err)
			}
			if resp.EventID != ev.EventID {
				t.Errorf("response event ID = %q, want %q", resp.EventID, ev.EventID)
			}
		})
	}
}

func TestGetEvent(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		getEventFn     func(ctx context.Context, eventID string) (*database.EventRecord, error)
		expectedStatus int
	}{
		{
			name:           "found",
			url:            "/api/v1/events?event_id=ev-1",
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			url:  "/api/v1/events?event_id=missing",
			getEventFn: func(ctx context.Context, eventID string) (*database.EventRecord, error) {
				return nil, fmt.Errorf("event not found: %s", eventID)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing param",
			url:            "/api/v1/events",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandlers(&mockRepository{GetEventFn: tt.getEventFn}, &mockPublisher{})

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			h.GetEvent(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
		})
	}
}

func TestCreateSubscription(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFn       func(ctx context.Context, sub *database.Subscription) error
		expectedStatus int
		checkSub       func(t *testing.T, sub *database.Subscription)
	}{
		{
			name:           "valid email subscription",
			body:           `{"eventType":"Deployment","severityFilter":"medium","channel":"email","target":"ops@example.com"}`,
			expectedStatus: http.StatusCreated,
			checkSub: func(t *testing.T, sub *database.Subscription) {
				if sub.SubscriptionID == "" {
					t.Error("subscription ID not assigned")
				}
				if sub.EventType != "deployment" {
					t.Errorf("eventType = %q, want normalized %q", sub.EventType, "deployment")
				}
				if sub.Channel != events.ChannelEmail {
					t.Errorf("channel = %q, want %q", sub.Channel, events.ChannelEmail)
				}
				if !sub.Active {
					t.Error("active should default to true")
				}
			},
		},
		{
			name:           "valid webhook subscription inactive",
			body:           `{"eventType":"deployment","severityFilter":"HIGH","channel":"WEBHOOK","target":"https://example.com/hook","active":false}`,
			expectedStatus: http.StatusCreated,
			checkSub: func(t *testing.T, sub *database.Subscription) {
				if sub.Active {
					t.Error("active should honor the request value")
				}
			},
		},
		{
			name:           "invalid severity filter",
			body:           `{"eventType":"deployment","severityFilter":"URGENT","channel":"EMAIL","target":"ops@example.com"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown channel",
			body:           `{"eventType":"deployment","severityFilter":"HIGH","channel":"SMS","target":"+123456"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "email channel with bad target",
			body:           `{"eventType":"deployment","severityFilter":"HIGH","channel":"EMAIL","target":"not-an-address"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "webhook channel with bad target",
			body:           `{"eventType":"deployment","severityFilter":"HIGH","channel":"WEBHOOK","target":"ftp://example.com"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate subscription",
			body: `{"eventType":"deployment","severityFilter":"HIGH","channel":"EMAIL","target":"ops@example.com"}`,
			createFn: func(ctx context.Context, sub *database.Subscription) error {
				return fmt.Errorf("subscription already exists: %s", sub.SubscriptionID)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *database.Subscription
			repo := &mockRepository{
				CreateSubscriptionFn: func(ctx context.Context, sub *database.Subscription) error {
					if tt.createFn != nil {
						return tt.createFn(ctx, sub)
					}
					created = sub
					return nil
				},
			}
			h := NewHandlers(repo, &mockPublisher{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.CreateSubscription(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.checkSub != nil {
				if created == nil {
					t.Fatal("subscription was not persisted")
				}
				tt.checkSub(t, created)
			}
		})
	}
}

func TestUpdateSubscription(t *testing.T) {
	t.Run("updates and returns the subscription", func(t *testing.T) {
		var updated *database.Subscription
		repo := &mockRepository{
			UpdateSubscriptionFn: func(ctx context.Context, sub *database.Subscription) error {
				updated = sub
				return nil
			},
		}
		h := NewHandlers(repo, &mockPublisher{})

		body := `{"eventType":"incident","severityFilter":"CRITICAL","channel":"WEBHOOK","target":"https://example.com/hook"}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/subscriptions?subscription_id=sub-1", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.UpdateSubscription(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
		}
		if updated == nil {
			t.Fatal("update was not persisted")
		}
		if updated.SubscriptionID != "sub-1" {
			t.Errorf("subscription ID = %q, want %q", updated.SubscriptionID, "sub-1")
		}
		if updated.EventType != "incident" {
			t.Errorf("eventType = %q, want %q", updated.EventType, "incident")
		}
		// Active not in the request: preserved from the stored subscription.
		if !updated.Active {
			t.Error("active should be preserved when omitted")
		}
	})

	t.Run("missing subscription_id", func(t *testing.T) {
		h := NewHandlers(&mockRepository{}, &mockPublisher{})
		req := httptest.NewRequest(http.MethodPut, "/api/v1/subscriptions", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()
		h.UpdateSubscription(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockRepository{
			GetSubscriptionFn: func(ctx context.Context, subscriptionID string) (*database.Subscription, error) {
				return nil, fmt.Errorf("subscription not found: %s", subscriptionID)
			},
		}
		h := NewHandlers(repo, &mockPublisher{})
		body := `{"eventType":"incident","severityFilter":"CRITICAL","channel":"WEBHOOK","target":"https://example.com/hook"}`
		req := httptest.NewRequest(http.MethodPut, "/api/v1/subscriptions?subscription_id=missing", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.UpdateSubscription(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestToggleSubscriptionActive(t *testing.T) {
	t.Run("disables a subscription", func(t *testing.T) {
		var gotID string
		var gotActive bool
		repo := &mockRepository{
			SetSubscriptionActiveFn: func(ctx context.Context, subscriptionID string, active bool) error {
				gotID = subscriptionID
				gotActive = active
				return nil
			},
		}
		h := NewHandlers(repo, &mockPublisher{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/toggle?subscription_id=sub-1", bytes.NewBufferString(`{"active":false}`))
		w := httptest.NewRecorder()
		h.ToggleSubscriptionActive(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if gotID != "sub-1" || gotActive {
			t.Errorf("SetSubscriptionActive(%q, %v), want (%q, false)", gotID, gotActive, "sub-1")
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockRepository{
			SetSubscriptionActiveFn: func(ctx context.Context, subscriptionID string, active bool) error {
				return fmt.Errorf("subscription not found: %s", subscriptionID)
			},
		}
		h := NewHandlers(repo, &mockPublisher{})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/toggle?subscription_id=missing", bytes.NewBufferString(`{"active":true}`))
		w := httptest.NewRecorder()
		h.ToggleSubscriptionActive(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestDeleteSubscription(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		h := NewHandlers(&mockRepository{}, &mockPublisher{})
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/subscriptions?subscription_id=sub-1", nil)
		w := httptest.NewRecorder()
		h.DeleteSubscription(w, req)
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
		}
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockRepository{
			DeleteSubscriptionFn: func(ctx context.Context, subscriptionID string) error {
				return fmt.Errorf("subscription not found: %s", subscriptionID)
			},
		}
		h := NewHandlers(repo, &mockPublisher{})
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/subscriptions?subscription_id=missing", nil)
		w := httptest.NewRecorder()
		h.DeleteSubscription(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestListNotifications(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedStatus int
		wantFilter     *database.NotificationFilter
	}{
		{
			name:           "no filters",
			url:            "/api/v1/notifications",
			expectedStatus: http.StatusOK,
			wantFilter:     &database.NotificationFilter{},
		},
		{
			name:           "filter by event and status",
			url:            "/api/v1/notifications?event_id=ev-1&status=failed",
			expectedStatus: http.StatusOK,
			wantFilter:     &database.NotificationFilter{EventID: "ev-1", Status: database.StatusFailed},
		},
		{
			name:           "invalid status",
			url:            "/api/v1/notifications?status=PENDING",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotFilter database.NotificationFilter
			repo := &mockRepository{
				ListNotificationsFn: func(ctx context.Context, filter database.NotificationFilter, limit, offset int) ([]database.NotificationRecord, error) {
					gotFilter = filter
					return []database.NotificationRecord{}, nil
				},
			}
			h := NewHandlers(repo, &mockPublisher{})

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			h.ListNotifications(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if tt.wantFilter != nil && gotFilter != *tt.wantFilter {
				t.Errorf("filter = %+v, want %+v", gotFilter, *tt.wantFilter)
			}
		})
	}
}

func TestGetServiceMetrics(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h := NewHandlers(&mockRepository{}, &mockPublisher{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/services/metrics", nil)
		w := httptest.NewRecorder()
		h.GetServiceMetrics(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})

	t.Run("single service", func(t *testing.T) {
		h := NewHandlers(&mockRepository{}, &mockPublisher{}, WithMetricsReader(&mockMetricsReader{}))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/services/metrics?service=dispatcher", nil)
		w := httptest.NewRecorder()
		h.GetServiceMetrics(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		var got metrics.ServiceMetrics
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if got.ServiceName != "dispatcher" {
			t.Errorf("service = %q, want %q", got.ServiceName, "dispatcher")
		}
	})

	t.Run("unknown service shows offline", func(t *testing.T) {
		reader := &mockMetricsReader{
			GetServiceMetricsFn: func(ctx context.Context, serviceName string) (*metrics.ServiceMetrics, error) {
				return nil, fmt.Errorf("no metrics found for service: %s", serviceName)
			},
		}
		h := NewHandlers(&mockRepository{}, &mockPublisher{}, WithMetricsReader(reader))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/services/metrics?service=ghost", nil)
		w := httptest.NewRecorder()
		h.GetServiceMetrics(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		var got metrics.ServiceMetrics
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if got.Status != "offline" {
			t.Errorf("status = %q, want %q", got.Status, "offline")
		}
	})

	t.Run("all services include known offline", func(t *testing.T) {
		h := NewHandlers(&mockRepository{}, &mockPublisher{}, WithMetricsReader(&mockMetricsReader{}))
		req := httptest.NewRequest(http.MethodGet, "/api/v1/services/metrics", nil)
		w := httptest.NewRecorder()
		h.GetServiceMetrics(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		var got ServiceMetricsResponse
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		for _, name := range metrics.ServiceNames {
			svc, ok := got.Services[name]
			if !ok {
				t.Errorf("known service %q missing from response", name)
				continue
			}
			if svc.Status != "offline" {
				t.Errorf("service %q status = %q, want %q", name, svc.Status, "offline")
			}
		}
	})
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", url: "/x", wantLimit: 50, wantOffset: 0},
		{name: "explicit", url: "/x?limit=10&offset=20", wantLimit: 10, wantOffset: 20},
		{name: "capped limit", url: "/x?limit=500", wantLimit: 100, wantOffset: 0},
		{name: "garbage falls back", url: "/x?limit=abc&offset=-1", wantLimit: 50, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			limit, offset := parsePagination(req)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("parsePagination() = (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
