package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends email through the Resend API.
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider creates the Resend backend. An empty API key leaves the
// backend unavailable.
func NewResendProvider(apiKey string) *ResendProvider {
	p := &ResendProvider{}
	if apiKey == "" {
		slog.Warn("Resend API key not set, Resend provider will be unavailable")
		return p
	}

	p.client = resend.NewClient(apiKey)
	slog.Info("Resend email provider initialized")
	return p
}

// Name returns the provider name.
func (p *ResendProvider) Name() string {
	return "resend"
}

// IsConfigured reports whether an API key was supplied.
func (p *ResendProvider) IsConfigured() bool {
	return p.client != nil
}

// Send delivers the email through the Resend API. Resend takes a single
// body, so the HTML part wins when both are present.
func (p *ResendProvider) Send(ctx context.Context, req *EmailRequest) error {
	if p.client == nil {
		return fmt.Errorf("resend: %w", ErrNotConfigured)
	}
	if len(req.To) == 0 {
		return fmt.Errorf("resend: no recipients specified")
	}

	params := &resend.SendEmailRequest{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
	}
	if req.HTML != "" {
		params.Html = req.HTML
	} else {
		params.Text = req.Body
	}

	resp, err := p.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend: send to %v: %w", req.To, err)
	}

	slog.Info("Email sent via Resend",
		"email_id", resp.Id,
		"to", req.To,
		"subject", req.Subject)
	return nil
}
