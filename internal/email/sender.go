// Package email sends share notification mails over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned when no SMTP transport has been set up.
var ErrNotConfigured = errors.New("email: sender not configured")

// Sender delivers a share notification to its recipient
type Sender interface {
	Send(ctx context.Context, n ShareNotification) error
}

// SMTPConfig holds the SMTP transport settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends notifications through an SMTP relay using go-mail.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender builds a sender for the given relay settings
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg}, nil
}

func (s *SMTPSender) Send(ctx context.Context, n ShareNotification) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat("SSGL OurTransfer", s.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(n.RecipientEmail); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	// replies go to the person sharing the file, not the relay account
	if n.SenderEmail != "" {
		if err := msg.ReplyTo(n.SenderEmail); err != nil {
			return fmt.Errorf("invalid sender address: %w", err)
		}
	}
	msg.Subject(n.Subject())

	html, err := RenderHTML(n)
	if err != nil {
		return err
	}
	msg.SetBodyString(mail.TypeTextPlain, RenderText(n))
	msg.AddAlternativeString(mail.TypeTextHTML, html)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
