// Package provider defines the email provider interface and registry.
// Multiple backends (SMTP, SES, Resend, Postmark) are registered at startup
// and selected by configuration, with ordered fallback when a send fails.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Sentinel errors shared by all backends so callers can classify a failed
// send without matching message text.
var (
	// ErrNotConfigured means the backend is registered but missing the
	// credentials or settings it needs to send.
	ErrNotConfigured = errors.New("email provider not configured")
	// ErrNoProviderAvailable means no registered backend can send at all.
	ErrNoProviderAvailable = errors.New("no configured email provider available")
)

// EmailRequest represents an email to be sent.
type EmailRequest struct {
	From    string
	To      []string
	Subject string
	Body    string // Plain text body
	HTML    string // HTML body (optional)
}

// Provider is a single email backend.
type Provider interface {
	// Name identifies the backend ("smtp", "ses", ...).
	Name() string

	// Send delivers the email through this backend.
	Send(ctx context.Context, req *EmailRequest) error

	// IsConfigured reports whether the backend can send at all.
	IsConfigured() bool
}

// Registry holds the registered backends and the configured send order.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	primary   string
	fallback  []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a backend to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
	slog.Info("Registered email provider", "provider", p.Name(), "configured", p.IsConfigured())
}

// SetPrimary names the backend to try first.
func (r *Registry) SetPrimary(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("provider %q not registered", name)
	}
	r.primary = name
	slog.Info("Set primary email provider", "provider", name)
	return nil
}

// SetFallback names the backends to try, in order, after the primary.
func (r *Registry) SetFallback(names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.providers[name]; !ok {
			return fmt.Errorf("provider %q not registered", name)
		}
	}
	r.fallback = names
	slog.Info("Set fallback email providers", "order", names)
	return nil
}

// Get returns a backend by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// List returns all registered backend names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// candidates returns the configured backends in send order: the primary
// first, then the fallbacks, then any other configured backend as a last
// resort. The caller must hold at least a read lock.
func (r *Registry) candidates() []Provider {
	ordered := make([]Provider, 0, len(r.providers))
	seen := make(map[string]bool, len(r.providers))
	appendConfigured := func(name string) {
		if seen[name] {
			return
		}
		if p, ok := r.providers[name]; ok && p.IsConfigured() {
			ordered = append(ordered, p)
			seen[name] = true
		}
	}

	appendConfigured(r.primary)
	for _, name := range r.fallback {
		appendConfigured(name)
	}
	for name := range r.providers {
		appendConfigured(name)
	}
	return ordered
}

// GetPrimary returns the backend Send would try first.
func (r *Registry) GetPrimary() (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := r.candidates()
	if len(ordered) == 0 {
		return nil, ErrNoProviderAvailable
	}
	if ordered[0].Name() != r.primary {
		slog.Warn("Primary email provider not configured, using fallback",
			"primary", r.primary,
			"fallback", ordered[0].Name())
	}
	return ordered[0], nil
}

// Send tries the configured backends in order and stops at the first
// success. When every attempt fails the first backend's error is returned,
// since the later backends were only tried because of it.
func (r *Registry) Send(ctx context.Context, req *EmailRequest) error {
	r.mu.RLock()
	ordered := r.candidates()
	r.mu.RUnlock()

	if len(ordered) == 0 {
		return ErrNoProviderAvailable
	}

	var firstErr error
	for i, p := range ordered {
		err := p.Send(ctx, req)
		if err == nil {
			return nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if i < len(ordered)-1 {
			slog.Warn("Email provider failed, trying next",
				"provider", p.Name(),
				"next", ordered[i+1].Name(),
				"error", err)
		}
	}
	return firstErr
}
