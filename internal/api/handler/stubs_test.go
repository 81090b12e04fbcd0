package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly-api/internal/api/middleware"
	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/guard"
	"github.com/bookly/bookly-api/internal/core/ports"
	"github.com/bookly/bookly-api/internal/core/token"
)

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubSessions struct {
	loginFn   func(ctx context.Context, username, password string) (*ports.TokenPair, *domain.User, error)
	refreshFn func(ctx context.Context, claims *token.SessionClaims) (string, error)
	logoutFn  func(ctx context.Context, claims *token.SessionClaims) error
}

func (s *stubSessions) Login(ctx context.Context, username, password string) (*ports.TokenPair, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubSessions) Refresh(ctx context.Context, claims *token.SessionClaims) (string, error) {
	return s.refreshFn(ctx, claims)
}

func (s *stubSessions) Logout(ctx context.Context, claims *token.SessionClaims) error {
	return s.logoutFn(ctx, claims)
}

type stubAccounts struct {
	signupFn   func(ctx context.Context, in ports.SignupInput) (*domain.User, error)
	verifyFn   func(ctx context.Context, tok string) (*domain.User, error)
	resetReqFn func(ctx context.Context, email string) error
	confirmFn  func(ctx context.Context, tok, pw, confirm string) (*domain.User, error)
	profileFn  func(ctx context.Context, user *domain.User) (*domain.UserProfile, error)
	sendMailFn func(ctx context.Context, to []string, subject, body string) error
}

func (s *stubAccounts) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAccounts) Verify(ctx context.Context, tok string) (*domain.User, error) {
	return s.verifyFn(ctx, tok)
}

func (s *stubAccounts) RequestPasswordReset(ctx context.Context, email string) error {
	return s.resetReqFn(ctx, email)
}

func (s *stubAccounts) ConfirmPasswordReset(ctx context.Context, tok, pw, confirm string) (*domain.User, error) {
	return s.confirmFn(ctx, tok, pw, confirm)
}

func (s *stubAccounts) Profile(ctx context.Context, user *domain.User) (*domain.UserProfile, error) {
	return s.profileFn(ctx, user)
}

func (s *stubAccounts) SendMail(ctx context.Context, to []string, subject, body string) error {
	return s.sendMailFn(ctx, to, subject, body)
}

type stubBooks struct {
	listFn       func(ctx context.Context) ([]domain.Book, error)
	listByUserFn func(ctx context.Context, userID string) ([]domain.Book, error)
	getFn        func(ctx context.Context, id string) (*domain.Book, error)
	createFn     func(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error)
	updateFn     func(ctx context.Context, id string, u domain.BookUpdate) (*domain.Book, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (s *stubBooks) ListBooks(ctx context.Context) ([]domain.Book, error) { return s.listFn(ctx) }

func (s *stubBooks) ListUserBooks(ctx context.Context, userID string) ([]domain.Book, error) {
	return s.listByUserFn(ctx, userID)
}

func (s *stubBooks) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.getFn(ctx, id)
}

func (s *stubBooks) CreateBook(ctx context.Context, in ports.CreateBookInput) (*domain.Book, error) {
	return s.createFn(ctx, in)
}

func (s *stubBooks) UpdateBook(ctx context.Context, id string, u domain.BookUpdate) (*domain.Book, error) {
	return s.updateFn(ctx, id, u)
}

func (s *stubBooks) DeleteBook(ctx context.Context, id string) error { return s.deleteFn(ctx, id) }

type stubReviews struct {
	addFn func(ctx context.Context, in ports.CreateReviewInput) (*domain.Review, error)
}

func (s *stubReviews) AddReview(ctx context.Context, in ports.CreateReviewInput) (*domain.Review, error) {
	return s.addFn(ctx, in)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testUser = &domain.User{
	ID:         uuid.MustParse("5b0a8a3e-9f3b-4a57-8d6c-0c7f6f9b2a11"),
	Username:   "alice",
	Email:      "alice@example.com",
	Role:       domain.RoleUser,
	IsVerified: true,
}

func newRequest(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// authenticated runs h behind a Guard whose only stage installs user and
// claims, the way the real chain leaves the principal.
func authenticated(t *testing.T, c echo.Context, user *domain.User, h echo.HandlerFunc) error {
	t.Helper()
	claims := &token.SessionClaims{User: token.UserClaims{Email: user.Email, UserUID: user.ID.String(), Role: user.Role}}
	claims.ID = "jti-1"

	install := guard.StageFunc(func(_ context.Context, p *guard.Principal) error {
		p.Claims = claims
		p.User = user
		return nil
	})
	return middleware.Guard(guard.Chain{install})(h)(c)
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}
