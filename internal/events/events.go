// Package events defines the event model shared by the ingestion API and the
// dispatcher, along with the severity scale and delivery channel constants.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event statuses. PENDING is assigned at ingestion; PROCESSED is written by
// the dispatcher when the event is persisted.
const (
	StatusPending   = "PENDING"
	StatusProcessed = "PROCESSED"
)

// Delivery channels a subscription can select.
const (
	ChannelEmail   = "EMAIL"
	ChannelWebhook = "WEBHOOK"
)

// ErrMalformedPayload is returned when a queue message cannot be decoded
// into a usable Event.
var ErrMalformedPayload = errors.New("malformed event payload")

// Event is the wire representation of a published event. Field names are
// fixed by the public contract. Details values are opaque JSON: the service
// stores and forwards them without interpreting.
type Event struct {
	EventID    string                     `json:"eventId"`
	EventType  string                     `json:"eventType"`
	Severity   string                     `json:"severity"`
	Title      string                     `json:"title"`
	Details    map[string]json.RawMessage `json:"details,omitempty"`
	ReceivedAt time.Time                  `json:"receivedAt"`
	Status     string                     `json:"status,omitempty"`
}

// ParseEvent decodes a queue message into an Event and validates the fields
// the pipeline cannot work without. Event type and severity are normalized
// to their canonical casing. Failures wrap ErrMalformedPayload.
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	ev.EventType = NormalizeEventType(ev.EventType)
	ev.Severity = NormalizeSeverity(ev.Severity)
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.EventID == "" {
		return nil, fmt.Errorf("%w: missing eventId", ErrMalformedPayload)
	}
	if ev.EventType == "" {
		return nil, fmt.Errorf("%w: missing eventType", ErrMalformedPayload)
	}
	if ev.Severity == "" {
		return nil, fmt.Errorf("%w: missing severity", ErrMalformedPayload)
	}
	if ev.Title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedPayload)
	}
	return &ev, nil
}

// NormalizeEventType trims and lowercases an event type. Matching is exact
// on the normalized form.
func NormalizeEventType(eventType string) string {
	return strings.ToLower(strings.TrimSpace(eventType))
}

// ValidChannel reports whether ch is a channel this service can deliver to.
func ValidChannel(ch string) bool {
	switch ch {
	case ChannelEmail, ChannelWebhook:
		return true
	}
	return false
}

// NormalizeChannel trims and uppercases a channel value for storage and
// dispatch.
func NormalizeChannel(ch string) string {
	return strings.ToUpper(strings.TrimSpace(ch))
}
