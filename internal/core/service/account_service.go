package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
	"github.com/bookly/bookly-api/internal/core/token"
)

const (
	verifyPath       = "/api/v1/auth/verify/"
	resetConfirmPath = "/api/v1/auth/password-reset-confirm/"
	verifySubject    = "Verify your Email"
	resetSubject     = "Reset your password"
	actionEmailClaim = "email"
)

// AccountService implements signup, email verification and password reset.
type AccountService struct {
	users    ports.UserRepository
	hasher   PasswordHasher
	actions  *token.ActionCodec
	mail     ports.MailQueue
	activity ports.ActivityRecorder
	baseURL  string
	log      zerolog.Logger
}

// NewAccountService returns an AccountService. publicDomain is the base URL
// used to build the links sent by email.
func NewAccountService(
	users ports.UserRepository,
	hasher PasswordHasher,
	actions *token.ActionCodec,
	mail ports.MailQueue,
	activity ports.ActivityRecorder,
	publicDomain string,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		users:    users,
		hasher:   hasher,
		actions:  actions,
		mail:     mail,
		activity: normalizeActivity(activity),
		baseURL:  strings.TrimRight(publicDomain, "/"),
		log:      log,
	}
}

// Signup creates an unverified account and sends the verification link.
// Mail delivery is best-effort and never fails the signup.
func (s *AccountService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	username := html.EscapeString(strings.TrimSpace(in.Username))
	email := normalizeEmail(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("signup: %w", err)
	}

	_, err = s.users.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: username taken", domain.ErrUserExists)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("signup: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.sendActionLink(ctx, email, verifyPath, verifySubject,
		"Verify Your Email", "to verify your email")

	recordActivity(ctx, s.activity, s.log, domain.ActivityEvent{
		Type:     domain.ActivitySignup,
		UserID:   created.ID.String(),
		Username: created.Username,
		Email:    created.Email,
	})
	s.log.Info().Str("user_id", created.ID.String()).Msg("account created")

	return created, nil
}

// Verify marks the account named by an action token as verified.
func (s *AccountService) Verify(ctx context.Context, actionToken string) (*domain.User, error) {
	user, err := s.userFromActionToken(ctx, actionToken)
	if err != nil {
		return nil, err
	}

	user.IsVerified = true
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("verify account: %w", err)
	}

	recordActivity(ctx, s.activity, s.log, domain.ActivityEvent{
		Type:   domain.ActivityEmailVerified,
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	return user, nil
}

// RequestPasswordReset always issues a reset link, whether or not the email
// is registered, so the response does not reveal which accounts exist.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrInvalidInput
	}

	s.sendActionLink(ctx, email, resetConfirmPath, resetSubject,
		"Reset your password", "to reset your password")

	recordActivity(ctx, s.activity, s.log, domain.ActivityEvent{
		Type:  domain.ActivityPasswordResetAsked,
		Email: email,
	})
	return nil
}

// ConfirmPasswordReset replaces the password of the account named by the token.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, actionToken, newPassword, confirmPassword string) (*domain.User, error) {
	if newPassword != confirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	user, err := s.userFromActionToken(ctx, actionToken)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("reset password: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("reset password: %w", err)
	}

	recordActivity(ctx, s.activity, s.log, domain.ActivityEvent{
		Type:   domain.ActivityPasswordReset,
		UserID: user.ID.String(),
		Email:  user.Email,
	})
	return user, nil
}

// Profile returns the user with their books and reviews.
func (s *AccountService) Profile(ctx context.Context, user *domain.User) (*domain.UserProfile, error) {
	profile, err := s.users.FindProfile(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return profile, nil
}

// SendMail queues a message to recipients.
func (s *AccountService) SendMail(ctx context.Context, recipients []string, subject, body string) error {
	if len(recipients) == 0 {
		return domain.ErrInvalidInput
	}
	if err := s.mail.Enqueue(ctx, domain.Message{To: recipients, Subject: subject, HTML: body}); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (s *AccountService) userFromActionToken(ctx context.Context, actionToken string) (*domain.User, error) {
	data, err := s.actions.Decode(actionToken)
	if err != nil {
		s.log.Debug().Err(err).Msg("action token rejected")
		return nil, domain.ErrInvalidToken
	}
	email := data[actionEmailClaim]
	if email == "" {
		return nil, domain.ErrInvalidToken
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) sendActionLink(ctx context.Context, email, path, subject, heading, purpose string) {
	tok, err := s.actions.Issue(map[string]string{actionEmailClaim: email})
	if err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("failed to issue action token")
		return
	}

	link := s.baseURL + path + tok
	body := fmt.Sprintf(`<h1>%s</h1>
<p>Please click this <a href="%s">link</a> %s</p>`, heading, html.EscapeString(link), purpose)

	if err := s.mail.Enqueue(ctx, domain.Message{To: []string{email}, Subject: subject, HTML: body}); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to queue mail")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
