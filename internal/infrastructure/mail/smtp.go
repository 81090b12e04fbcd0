// Package mail delivers outbound messages over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/bookly/bookly-api/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

// Config captures the SMTP relay settings.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	// StartTLS upgrades a plain connection; SSL dials with implicit TLS.
	StartTLS bool
	SSL      bool
	Timeout  time.Duration
}

// SMTPMailer implements ports.Mailer with go-mail.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer builds the client. No connection is made until Send.
func NewSMTPMailer(cfg Config) (*SMTPMailer, error) {
	if cfg.Server == "" {
		return nil, errors.New("mail: server is empty")
	}
	if cfg.From == "" {
		return nil, errors.New("mail: from address is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	policy := gomail.NoTLS
	if cfg.StartTLS {
		policy = gomail.TLSMandatory
	}
	opts := []gomail.Option{
		gomail.WithTimeout(timeout),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.SSL {
		opts = append(opts, gomail.WithSSL())
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Server, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

// Send dials the relay and delivers msg as a single HTML message.
func (m *SMTPMailer) Send(ctx context.Context, msg domain.Message) error {
	out, err := buildMessage(m.from, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMessage(from string, msg domain.Message) (*gomail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, errors.New("mail: no recipients")
	}

	out := gomail.NewMsg()
	if err := out.From(from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := out.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	return out, nil
}
