package ports

import (
	"context"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// Mailer delivers a single message synchronously.
type Mailer interface {
	Send(ctx context.Context, msg domain.Message) error
}

// MailQueue accepts messages for asynchronous delivery. Enqueue must not
// block on the delivery itself.
type MailQueue interface {
	Enqueue(ctx context.Context, msg domain.Message) error
}
