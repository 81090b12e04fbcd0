package mail

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// LogMailer writes messages to the log instead of sending them. It is used
// when no SMTP server is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg domain.Message) error {
	m.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("body_bytes", len(msg.HTML)).
		Msg("mail not sent: no smtp server configured")
	return nil
}
