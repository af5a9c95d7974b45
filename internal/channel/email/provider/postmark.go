package provider

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrz1836/postmark"
)

// PostmarkProvider sends email through the Postmark API.
type PostmarkProvider struct {
	client *postmark.Client
}

// NewPostmarkProvider creates the Postmark backend. The account token is
// optional for sending; an empty server token leaves the backend
// unavailable.
func NewPostmarkProvider(serverToken, accountToken string) *PostmarkProvider {
	p := &PostmarkProvider{}
	if serverToken == "" {
		slog.Warn("Postmark server token not set, Postmark provider will be unavailable")
		return p
	}

	p.client = postmark.NewClient(serverToken, accountToken)
	slog.Info("Postmark email provider initialized")
	return p
}

// Name returns the provider name.
func (p *PostmarkProvider) Name() string {
	return "postmark"
}

// IsConfigured reports whether a server token was supplied.
func (p *PostmarkProvider) IsConfigured() bool {
	return p.client != nil
}

// Send delivers the email through the Postmark API.
func (p *PostmarkProvider) Send(ctx context.Context, req *EmailRequest) error {
	if p.client == nil {
		return fmt.Errorf("postmark: %w", ErrNotConfigured)
	}
	if len(req.To) == 0 {
		return fmt.Errorf("postmark: no recipients specified")
	}

	email := postmark.Email{
		From:     req.From,
		To:       strings.Join(req.To, ","),
		Subject:  req.Subject,
		TextBody: req.Body,
		HTMLBody: req.HTML,
	}

	resp, err := p.client.SendEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("postmark: send to %v: %w", req.To, err)
	}

	// The API reports rejections in the response body with a 200 status.
	if resp.ErrorCode > 0 {
		return fmt.Errorf("postmark: send rejected: %s (code %d)", resp.Message, resp.ErrorCode)
	}

	slog.Info("Email sent via Postmark",
		"message_id", resp.MessageID,
		"to", req.To,
		"subject", req.Subject)
	return nil
}
