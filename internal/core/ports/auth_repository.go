package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookly/bookly-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindProfile(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)
	// Update persists the mutable fields of user (verification, password, names, role).
	Update(ctx context.Context, user *domain.User) error
}

// Blocklist is the revocation registry for token identifiers.
type Blocklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ActivityRecorder writes auth events to the audit trail.
type ActivityRecorder interface {
	Record(ctx context.Context, event domain.ActivityEvent) error
}
