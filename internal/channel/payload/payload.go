// Package payload builds the channel-specific message bodies derived from an
// event. Builders are pure functions so every channel renders the same event
// the same way.
package payload

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/ctheara/event-notification-service/internal/events"
)

// EmailPayload is the rendered subject and body pair for email delivery.
// Text is always populated; HTML carries a richer rendering of the same
// content for providers that support it.
type EmailPayload struct {
	Subject string
	Text    string
	HTML    string
}

// WebhookPayload is the JSON document posted to webhook targets.
type WebhookPayload struct {
	EventID        string                     `json:"eventId"`
	SubscriptionID string                     `json:"subscriptionId"`
	EventType      string                     `json:"eventType"`
	Severity       string                     `json:"severity"`
	Title          string                     `json:"title"`
	Details        map[string]json.RawMessage `json:"details,omitempty"`
	ReceivedAt     time.Time                  `json:"receivedAt"`
	DeliveredAt    time.Time                  `json:"deliveredAt"`
}

// BuildEmailPayload renders an event as an email subject and body.
func BuildEmailPayload(ev *events.Event) EmailPayload {
	return EmailPayload{
		Subject: fmt.Sprintf("[%s] %s: %s", ev.Severity, ev.EventType, ev.Title),
		Text:    buildTextBody(ev),
		HTML:    buildHTMLBody(ev),
	}
}

// BuildWebhookPayload renders an event as the document posted to a webhook
// target. The subscription ID is included so receivers can tell which
// subscription produced the call.
func BuildWebhookPayload(ev *events.Event, subscriptionID string) WebhookPayload {
	return WebhookPayload{
		EventID:        ev.EventID,
		SubscriptionID: subscriptionID,
		EventType:      ev.EventType,
		Severity:       ev.Severity,
		Title:          ev.Title,
		Details:        ev.Details,
		ReceivedAt:     ev.ReceivedAt,
		DeliveredAt:    time.Now().UTC(),
	}
}

func buildTextBody(ev *events.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event:    %s\n", ev.EventType)
	fmt.Fprintf(&b, "Severity: %s\n", ev.Severity)
	fmt.Fprintf(&b, "Title:    %s\n", ev.Title)
	fmt.Fprintf(&b, "Received: %s\n", ev.ReceivedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Event ID: %s\n", ev.EventID)

	if len(ev.Details) > 0 {
		b.WriteString("\nDetails:\n")
		for _, k := range sortedKeys(ev.Details) {
			fmt.Fprintf(&b, "  %s: %s\n", k, string(ev.Details[k]))
		}
	}
	return b.String()
}

func buildHTMLBody(ev *events.Event) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(ev.Title))
	b.WriteString("<table>")
	htmlRow(&b, "Event", ev.EventType)
	htmlRow(&b, "Severity", ev.Severity)
	htmlRow(&b, "Received", ev.ReceivedAt.Format(time.RFC3339))
	htmlRow(&b, "Event ID", ev.EventID)
	b.WriteString("</table>")

	if len(ev.Details) > 0 {
		b.WriteString("<h3>Details</h3><table>")
		for _, k := range sortedKeys(ev.Details) {
			htmlRow(&b, k, string(ev.Details[k]))
		}
		b.WriteString("</table>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func htmlRow(b *strings.Builder, key, value string) {
	fmt.Fprintf(b, "<tr><td><b>%s</b></td><td>%s</td></tr>",
		html.EscapeString(key), html.EscapeString(value))
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
