// Package matcher finds the subscriptions registered for an event's type.
package matcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
)

// SubscriptionSource is the storage dependency: an indexed lookup of
// subscriptions by event type.
type SubscriptionSource interface {
	GetSubscriptionsByEventType(ctx context.Context, eventType string) ([]database.Subscription, error)
}

// Matcher retrieves candidate subscriptions for events. Candidates are every
// subscription registered for the exact event type, active and inactive
// alike; eligibility (active flag, severity threshold) is decided by the
// caller so the audit trail can account for skips.
type Matcher struct {
	subs SubscriptionSource
}

// NewMatcher creates a matcher over the given subscription source.
func NewMatcher(subs SubscriptionSource) *Matcher {
	return &Matcher{subs: subs}
}

// FindCandidates returns all subscriptions whose event type equals the given
// type exactly. No pattern or hierarchy matching. An empty result is a
// normal outcome, not an error; a storage error is fatal for the event being
// processed and propagates to the caller.
func (m *Matcher) FindCandidates(ctx context.Context, eventType string) ([]database.Subscription, error) {
	normalized := events.NormalizeEventType(eventType)
	subs, err := m.subs.GetSubscriptionsByEventType(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates for %q: %w", normalized, err)
	}
	slog.Debug("Candidate lookup", "event_type", normalized, "candidates", len(subs))
	return subs, nil
}
