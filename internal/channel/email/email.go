// Package email delivers events to email targets through a configurable
// provider backend.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ctheara/event-notification-service/internal/channel"
	"github.com/ctheara/event-notification-service/internal/channel/email/provider"
	"github.com/ctheara/event-notification-service/internal/channel/payload"
	"github.com/ctheara/event-notification-service/internal/config"
	"github.com/ctheara/event-notification-service/internal/database"
	"github.com/ctheara/event-notification-service/internal/events"
)

// Sender delivers events by email. The actual transport is delegated to the
// provider registry, so SES, Resend, Postmark and plain SMTP are all reached
// through the same channel.
type Sender struct {
	registry *provider.Registry
	from     string
}

// NewSender creates an email sender with every backend registered from the
// given configuration. Backends missing credentials stay registered but
// unavailable, so the registry skips them at send time.
func NewSender(ctx context.Context, cfg config.EmailConfig) (*Sender, error) {
	reg := provider.NewRegistry()
	reg.Register(provider.NewSMTPProvider(cfg.SMTP))
	reg.Register(provider.NewSESProvider(ctx, cfg.AWSRegion))
	reg.Register(provider.NewResendProvider(cfg.ResendAPIKey))
	reg.Register(provider.NewPostmarkProvider(cfg.PostmarkServerToken, cfg.PostmarkAccountToken))

	if err := reg.SetPrimary(cfg.Provider); err != nil {
		return nil, fmt.Errorf("invalid email provider: %w", err)
	}
	if len(cfg.FallbackProviders) > 0 {
		if err := reg.SetFallback(cfg.FallbackProviders...); err != nil {
			return nil, fmt.Errorf("invalid email fallback providers: %w", err)
		}
	}

	return NewSenderWithRegistry(reg, cfg.From), nil
}

// NewSenderWithRegistry creates an email sender over an existing registry.
func NewSenderWithRegistry(reg *provider.Registry, from string) *Sender {
	return &Sender{
		registry: reg,
		from:     from,
	}
}

// Type returns the channel type this sender handles.
func (s *Sender) Type() string {
	return events.ChannelEmail
}

// Deliver sends the event to the subscription's target address. The target
// may be a comma-separated list of addresses.
func (s *Sender) Deliver(ctx context.Context, sub *database.Subscription, ev *events.Event) error {
	recipients := parseRecipients(sub.Target)
	if len(recipients) == 0 {
		return fmt.Errorf("email recipient is required")
	}
	for _, recipient := range recipients {
		if !channel.IsValidEmail(recipient) {
			return fmt.Errorf("invalid email address: %q", recipient)
		}
	}

	p := payload.BuildEmailPayload(ev)
	req := &provider.EmailRequest{
		From:    s.from,
		To:      recipients,
		Subject: p.Subject,
		Body:    p.Text,
		HTML:    p.HTML,
	}

	if err := s.registry.Send(ctx, req); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Debug("Email delivered",
		"event_id", ev.EventID,
		"subscription_id", sub.SubscriptionID,
		"to", recipients)
	return nil
}

// parseRecipients parses a comma-separated list of email addresses.
func parseRecipients(value string) []string {
	parts := strings.Split(value, ",")
	recipients := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			recipients = append(recipients, trimmed)
		}
	}
	return recipients
}
