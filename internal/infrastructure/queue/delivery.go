package queue

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/api/metrics"
	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
)

const (
	defaultMaxAttempts    = 3
	defaultInitialBackoff = 500 * time.Millisecond
)

// RetryPolicy bounds how hard a worker tries before dropping a message.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = defaultInitialBackoff
	}
	return p
}

// deliver sends msg through mailer with exponential backoff. It returns the
// last error once the attempts are exhausted.
func deliver(ctx context.Context, mailer ports.Mailer, policy RetryPolicy, msg domain.Message, log zerolog.Logger) error {
	start := time.Now()
	defer func() { metrics.MailDeliveryDuration.Observe(time.Since(start).Seconds()) }()

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = policy.InitialBackoff
	expBackoff.MaxInterval = 30 * policy.InitialBackoff

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, mailer.Send(ctx, msg)
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			log.Warn().Err(err).
				Int("attempt", attempt).
				Dur("retry_in", wait).
				Str("subject", msg.Subject).
				Msg("mail delivery failed, retrying")
		}),
	)
	if err != nil {
		metrics.MailDeliveriesTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).
			Int("attempts", attempt).
			Strs("to", msg.To).
			Str("subject", msg.Subject).
			Msg("mail delivery abandoned")
		return err
	}

	metrics.MailDeliveriesTotal.WithLabelValues("sent").Inc()
	return nil
}
