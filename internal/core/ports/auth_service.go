package ports

import (
	"context"
	"time"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/token"
)

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// SessionService issues, refreshes and revokes session tokens.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*TokenPair, *domain.User, error)
	Refresh(ctx context.Context, claims *token.SessionClaims) (string, error)
	Logout(ctx context.Context, claims *token.SessionClaims) error
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// AccountService covers the account lifecycle: signup, verification and password reset.
type AccountService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Verify(ctx context.Context, actionToken string) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, actionToken, newPassword, confirmPassword string) (*domain.User, error)
	Profile(ctx context.Context, user *domain.User) (*domain.UserProfile, error)
	SendMail(ctx context.Context, recipients []string, subject, body string) error
}
