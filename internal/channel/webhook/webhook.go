// Package webhook delivers events by POSTing a JSON payload to the
// subscription's target URL.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ctheara/event-notification-service/internal/channel"
	"github.com/ctheara/event-notification-service/internal/channel/payload"
	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
)

// Sender delivers events over HTTP. A single Sender is shared across all
// webhook subscriptions; per-delivery state lives in the request.
type Sender struct {
	client *http.Client
}

// NewSender creates a webhook sender with a default HTTP client.
func NewSender() *Sender {
	return &Sender{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewSenderWithClient creates a webhook sender with a custom HTTP client.
func NewSenderWithClient(client *http.Client) *Sender {
	return &Sender{client: client}
}

// Type returns the channel type this sender handles.
func (s *Sender) Type() string {
	return events.ChannelWebhook
}

// Deliver POSTs the event payload to the subscription's target URL. Any
// non-2xx response is a delivery failure.
func (s *Sender) Deliver(ctx context.Context, sub *database.Subscription, ev *events.Event) error {
	if !channel.IsValidURL(sub.Target) {
		return fmt.Errorf("invalid webhook URL: %q", sub.Target)
	}

	body, err := json.Marshal(payload.BuildWebhookPayload(ev, sub.SubscriptionID))
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Id", ev.EventID)
	req.Header.Set("X-Event-Type", ev.EventType)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	slog.Debug("Webhook delivered",
		"event_id", ev.EventID,
		"subscription_id", sub.SubscriptionID,
		"status", resp.StatusCode)
	return nil
}
