package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
	"github.com/bookly/bookly-api/internal/core/token"
)

const DefaultRevocationTTL = time.Hour

// SessionConfig holds the token lifetimes used by SessionService.
type SessionConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RevocationTTL time.Duration
}

// SessionService implements login, refresh and logout.
type SessionService struct {
	users     ports.UserRepository
	hasher    PasswordHasher
	codec     *token.SessionCodec
	blocklist ports.Blocklist
	activity  ports.ActivityRecorder
	cfg       SessionConfig
	log       zerolog.Logger
}

func NewSessionService(
	users ports.UserRepository,
	hasher PasswordHasher,
	codec *token.SessionCodec,
	blocklist ports.Blocklist,
	activity ports.ActivityRecorder,
	cfg SessionConfig,
	log zerolog.Logger,
) *SessionService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = token.DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = token.DefaultRefreshTTL
	}
	if cfg.RevocationTTL <= 0 {
		cfg.RevocationTTL = DefaultRevocationTTL
	}
	return &SessionService{
		users:     users,
		hasher:    hasher,
		codec:     codec,
		blocklist: blocklist,
		activity:  normalizeActivity(activity),
		cfg:       cfg,
		log:       log,
	}
}

// Login checks the credentials and issues an access/refresh pair. An unknown
// username and a wrong password produce the same ErrInvalidCredentials.
// Verification is not required here; it is enforced by the role guard.
func (s *SessionService) Login(ctx context.Context, username, password string) (*ports.TokenPair, *domain.User, error) {
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.loginFailed(ctx, username, "unknown_user")
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, username, "bad_password")
		return nil, nil, domain.ErrInvalidCredentials
	}

	uid := user.ID.String()
	access, err := s.codec.Issue(token.UserClaims{Email: user.Email, UserUID: uid, Role: user.Role}, s.cfg.AccessTTL, false)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	refresh, err := s.codec.Issue(token.UserClaims{Email: user.Email, UserUID: uid}, s.cfg.RefreshTTL, true)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	recordActivity(ctx, s.activity, s.log, domain.ActivityEvent{
		Type:     domain.ActivityLoginSuccess,
		UserID:   uid,
		Username: user.Username,
		Email:    user.Email,
	})
	s.log.Info().Str("user_id", uid).Msg("user logged in")

	return &ports.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: s.codec.Now().Add(s.cfg.RefreshTTL),
	}, user, nil
}

func (s *SessionService) loginFailed(ctx context.Context, username, cause string) {
	s.log.Warn().Str("username", username).Str("cause", cause).Msg("login failed")
	recordActivity(ctx, s.activity, s.log, domain.ActivityEvent{
		Type:     domain.ActivityLoginFailure,
		Username: username,
		Metadata: map[string]string{"cause": cause},
	})
}

// Refresh mints a new access token from already-validated refresh claims.
// Expiry is checked again here since it is the whole point of the endpoint.
func (s *SessionService) Refresh(_ context.Context, claims *token.SessionClaims) (string, error) {
	if claims == nil || !claims.Refresh || !claims.ExpiresAtTime().After(s.codec.Now()) {
		return "", domain.ErrExpiredOrInvalid
	}

	access, err := s.codec.Issue(claims.User, s.cfg.AccessTTL, false)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	return access, nil
}

// Logout revokes the token's jti. Revoking an already revoked jti is a no-op.
func (s *SessionService) Logout(ctx context.Context, claims *token.SessionClaims) error {
	if claims == nil || claims.JTI() == "" {
		return domain.ErrExpiredOrInvalid
	}
	if err := s.blocklist.Revoke(ctx, claims.JTI(), s.cfg.RevocationTTL); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	recordActivity(ctx, s.activity, s.log, domain.ActivityEvent{
		Type:   domain.ActivityLogout,
		UserID: claims.User.UserUID,
		Email:  claims.User.Email,
	})
	return nil
}
