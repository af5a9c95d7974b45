package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESProvider sends email through AWS SES.
type SESProvider struct {
	client *sesv2.Client
	region string
}

// NewSESProvider creates the SES backend for the given region. An empty
// region leaves the backend unavailable; credentials come from the default
// AWS chain (environment, shared config, instance role).
func NewSESProvider(ctx context.Context, region string) *SESProvider {
	p := &SESProvider{region: region}
	if region == "" {
		slog.Warn("AWS region not set, SES provider will be unavailable")
		return p
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		slog.Warn("Failed to load AWS config, SES provider will be unavailable", "error", err)
		return p
	}

	p.client = sesv2.NewFromConfig(awsCfg)
	slog.Info("SES email provider initialized", "region", region)
	return p
}

// Name returns the provider name.
func (p *SESProvider) Name() string {
	return "ses"
}

// IsConfigured reports whether the AWS client was initialized.
func (p *SESProvider) IsConfigured() bool {
	return p.client != nil
}

// Send delivers the email through the SES v2 API.
func (p *SESProvider) Send(ctx context.Context, req *EmailRequest) error {
	if p.client == nil {
		return fmt.Errorf("ses: %w", ErrNotConfigured)
	}
	if len(req.To) == 0 {
		return fmt.Errorf("ses: no recipients specified")
	}

	resp, err := p.client.SendEmail(ctx, sesInput(req))
	if err != nil {
		return fmt.Errorf("ses: send to %v: %w", req.To, err)
	}

	slog.Info("Email sent via SES",
		"message_id", aws.ToString(resp.MessageId),
		"to", req.To,
		"subject", req.Subject)
	return nil
}

// sesInput translates an EmailRequest into the SES v2 wire shape. Both the
// text and HTML parts are attached when present.
func sesInput(req *EmailRequest) *sesv2.SendEmailInput {
	body := &types.Body{}
	if req.Body != "" {
		body.Text = &types.Content{Data: aws.String(req.Body)}
	}
	if req.HTML != "" {
		body.Html = &types.Content{Data: aws.String(req.HTML)}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(req.From),
		Destination:      &types.Destination{ToAddresses: req.To},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(req.Subject)},
				Body:    body,
			},
		},
	}
}
