package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
)

// PasswordHasher is the credential store used by the auth services.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type nopActivity struct{}

func (nopActivity) Record(context.Context, domain.ActivityEvent) error { return nil }

func normalizeActivity(r ports.ActivityRecorder) ports.ActivityRecorder {
	if r == nil {
		return nopActivity{}
	}
	return r
}

// recordActivity writes to the audit trail. Failures are logged and never
// fail the calling operation.
func recordActivity(ctx context.Context, rec ports.ActivityRecorder, log zerolog.Logger, ev domain.ActivityEvent) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := rec.Record(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(ev.Type)).Msg("failed to record activity")
	}
}
