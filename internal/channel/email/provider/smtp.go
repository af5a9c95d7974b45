package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/ctheara/event-notification-service/internal/config"
)

// SMTPProvider implements email sending over plain SMTP. It is the default
// for local development (MailHog and similar) and also handles STARTTLS and
// SSL/TLS submission ports for real servers.
type SMTPProvider struct {
	host     string
	port     string
	user     string
	password string
}

// NewSMTPProvider creates the SMTP backend from transport settings.
func NewSMTPProvider(cfg config.SMTPConfig) *SMTPProvider {
	return &SMTPProvider{
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.User,
		password: cfg.Password,
	}
}

// Name returns the provider name.
func (p *SMTPProvider) Name() string {
	return "smtp"
}

// IsConfigured returns true if SMTP is properly configured.
func (p *SMTPProvider) IsConfigured() bool {
	return p.host != "" && p.port != ""
}

// Send sends an email via SMTP.
func (p *SMTPProvider) Send(ctx context.Context, req *EmailRequest) error {
	if !p.IsConfigured() {
		return fmt.Errorf("smtp: %w", ErrNotConfigured)
	}
	if len(req.To) == 0 {
		return fmt.Errorf("smtp: no recipients specified")
	}

	// Some servers require the envelope sender to match the
	// authenticated user.
	from := req.From
	if from == "" {
		from = p.user
	}
	if from == "" {
		return fmt.Errorf("no sender address configured")
	}

	port, err := strconv.Atoi(p.port)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %s", p.port)
	}

	addr := net.JoinHostPort(p.host, p.port)
	msg := buildMessage(from, req)

	// Port 587 uses STARTTLS, port 465 uses SSL/TLS. Anything else is
	// treated as a plain local server.
	if port == 587 || port == 465 {
		err = p.sendWithTLS(addr, port, from, req.To, msg)
	} else {
		var auth smtp.Auth
		if p.user != "" && p.password != "" {
			auth = smtp.PlainAuth("", p.user, p.password, p.host)
		}
		err = smtp.SendMail(addr, auth, from, req.To, msg)
	}
	if err != nil {
		return fmt.Errorf("smtp: send via %s: %w", addr, err)
	}

	slog.Info("Email sent via SMTP",
		"server", addr,
		"from", from,
		"to", req.To,
		"subject", req.Subject,
	)

	return nil
}

// buildMessage builds a complete email message in RFC 822 format. The HTML
// body is preferred when present, otherwise the plain text body is used.
func buildMessage(from string, req *EmailRequest) []byte {
	contentType := "text/plain"
	body := req.Body
	if req.HTML != "" {
		contentType = "text/html"
		body = req.HTML
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(req.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", req.Subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	msg.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.Bytes()
}

// sendWithTLS sends an email over a TLS or STARTTLS connection.
func (p *SMTPProvider) sendWithTLS(addr string, port int, from string, recipients []string, msg []byte) error {
	var client *smtp.Client

	if port == 465 {
		conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: p.host})
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server with TLS: %w", err)
		}
		defer conn.Close()

		client, err = smtp.NewClient(conn, p.host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}
	} else {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to connect to SMTP server: %w", err)
		}
		defer conn.Close()

		client, err = smtp.NewClient(conn, p.host)
		if err != nil {
			return fmt.Errorf("failed to create SMTP client: %w", err)
		}

		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: p.host}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}
	defer client.Close()

	if p.user != "" && p.password != "" {
		auth := smtp.PlainAuth("", p.user, p.password, p.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender %s: %w", from, err)
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", recipient, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := writer.Write(msg); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write email data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		slog.Warn("Error during SMTP QUIT", "error", err)
	}

	return nil
}
