// Package notification emails the operator about noteworthy bot activity.
package notification

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"leadrunner/platform/config"
)

// Sender delivers an operator notification.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPSender delivers notifications over the operator's own SMTP server
// using go-mail.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       string
}

// NewSMTPSender creates a sender from notification configuration.
func NewSMTPSender(cfg config.NotifyConfig) *SMTPSender {
	return &SMTPSender{
		host:     cfg.GetSMTPHost(),
		port:     cfg.GetSMTPPort(),
		username: cfg.GetSMTPUsername(),
		password: cfg.GetSMTPPassword(),
		from:     cfg.GetEmailFromAddress(),
		to:       cfg.GetOperatorEmail(),
	}
}

// Send delivers one plain-text notification to the operator.
func (s *SMTPSender) Send(ctx context.Context, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.to); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// NoopSender discards notifications; used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, string, string) error { return nil }

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
