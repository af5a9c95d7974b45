// Package channel defines the delivery channel abstraction and the registry
// that dispatches deliveries by subscription channel.
package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
)

// ErrUnsupportedChannel is returned when a subscription names a channel no
// sender is registered for.
var ErrUnsupportedChannel = errors.New("unsupported channel")

// Sender is the interface all delivery channels implement. Senders are
// stateless and safe for concurrent use across events. A sender classifies
// any delivery problem as an error and never retries internally; retry
// policy belongs to the queue layer.
type Sender interface {
	// Deliver sends the event to the subscription's target. The target
	// format depends on the channel:
	//   - EMAIL: recipient email address
	//   - WEBHOOK: HTTP/HTTPS URL
	Deliver(ctx context.Context, sub *database.Subscription, ev *events.Event) error

	// Type returns the channel this sender handles (e.g. "EMAIL", "WEBHOOK").
	Type() string
}

// Registry manages delivery channel senders.
type Registry struct {
	senders map[string]Sender
}

// NewRegistry creates a new sender registry.
func NewRegistry() *Registry {
	return &Registry{
		senders: make(map[string]Sender),
	}
}

// Register registers a sender.
func (r *Registry) Register(sender Sender) {
	r.senders[sender.Type()] = sender
}

// Get retrieves a sender by channel type.
func (r *Registry) Get(channelType string) (Sender, bool) {
	sender, ok := r.senders[channelType]
	return sender, ok
}

// List returns all registered channel types.
func (r *Registry) List() []string {
	types := make([]string, 0, len(r.senders))
	for t := range r.senders {
		types = append(types, t)
	}
	return types
}

// Deliver dispatches to the sender selected solely by the subscription's
// channel value. An unregistered channel fails with ErrUnsupportedChannel so
// the attempt is recorded as failed rather than silently dropped.
func (r *Registry) Deliver(ctx context.Context, sub *database.Subscription, ev *events.Event) error {
	sender, ok := r.Get(sub.Channel)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedChannel, sub.Channel)
	}
	return sender.Deliver(ctx, sub, ev)
}

// IsValidURL checks if a string is a valid HTTP/HTTPS URL.
func IsValidURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// IsValidEmail performs a basic shape check on an email address.
func IsValidEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1
}
