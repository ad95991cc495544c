// Package notify sends outbound email and SMS messages.
package notify

import (
	"context"
	"fmt"
	"time"

	"remindly-backend/internal/config"

	"github.com/wneessen/go-mail"
)

// Email is a single outbound message. Text is always sent; HTML is added as
// an alternative part when set.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// SMTPMailer delivers email through an SMTP relay
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer returns nil when no SMTP host is configured
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.TLS {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send delivers the email and returns its Message-ID
func (m *SMTPMailer) Send(ctx context.Context, email Email) (string, error) {
	msg, err := buildMessage(m.from, email)
	if err != nil {
		return "", err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return msg.GetMessageID(), nil
}

func buildMessage(from string, email Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(email.Subject)
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, email.Text)
	if email.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	}
	return msg, nil
}
