package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/token"
)

type sessionFixture struct {
	users     *stubUserRepo
	blocklist *stubBlocklist
	activity  *stubActivity
	codec     *token.SessionCodec
	svc       *SessionService
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	codec, err := token.NewSessionCodec("test-secret", "HS256")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	f := &sessionFixture{
		users:     newStubUserRepo(),
		blocklist: newStubBlocklist(),
		activity:  &stubActivity{},
		codec:     codec,
	}
	f.users.byEmail["alice@x.com"] = &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@x.com",
		Role:         domain.RoleUser,
		IsVerified:   true,
		PasswordHash: "hashed:s3cret!Pass",
	}
	f.svc = NewSessionService(f.users, plainHasher{}, codec, f.blocklist, f.activity, SessionConfig{}, zerolog.Nop())
	return f
}

func TestLogin_IssuesAccessAndRefresh(t *testing.T) {
	f := newSessionFixture(t)

	pair, user, err := f.svc.Login(context.Background(), "alice", "s3cret!Pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "alice@x.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	access, err := f.codec.Decode(pair.AccessToken)
	if err != nil {
		t.Fatalf("decode access: %v", err)
	}
	if access.Refresh || access.User.Role != domain.RoleUser || access.User.UserUID != user.ID.String() {
		t.Fatalf("unexpected access claims: %+v", access)
	}

	refresh, err := f.codec.Decode(pair.RefreshToken)
	if err != nil {
		t.Fatalf("decode refresh: %v", err)
	}
	if !refresh.Refresh {
		t.Fatal("refresh token must carry refresh=true")
	}
	if access.JTI() == refresh.JTI() {
		t.Fatal("access and refresh tokens share a jti")
	}
	if got := refresh.ExpiresAtTime().Sub(access.ExpiresAtTime()); got < 40*time.Hour {
		t.Fatalf("refresh should outlive access by the configured ttl, diff=%s", got)
	}

	if types := f.activity.types(); len(types) != 1 || types[0] != domain.ActivityLoginSuccess {
		t.Fatalf("unexpected activity: %v", types)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, _, wrongPassword := f.svc.Login(ctx, "alice", "nope")
	_, _, unknownUser := f.svc.Login(ctx, "bob", "nope")
	_, _, empty := f.svc.Login(ctx, "", "")

	for _, err := range []error{wrongPassword, unknownUser, empty} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatalf("messages differ: %q vs %q", wrongPassword, unknownUser)
	}

	types := f.activity.types()
	if len(types) != 2 || types[0] != domain.ActivityLoginFailure || types[1] != domain.ActivityLoginFailure {
		t.Fatalf("expected two failure events, got %v", types)
	}
}

func TestLogin_StoreFailureIsNotMasked(t *testing.T) {
	f := newSessionFixture(t)
	storeErr := errors.New("connection refused")
	f.users.findErr = storeErr

	_, _, err := f.svc.Login(context.Background(), "alice", "s3cret!Pass")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestLogin_ActivityFailureDoesNotFailLogin(t *testing.T) {
	f := newSessionFixture(t)
	f.activity.err = errors.New("mongo down")

	if _, _, err := f.svc.Login(context.Background(), "alice", "s3cret!Pass"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRefresh(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	pair, _, err := f.svc.Login(ctx, "alice", "s3cret!Pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := f.codec.Decode(pair.RefreshToken)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	access, err := f.svc.Refresh(ctx, claims)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got, err := f.codec.Decode(access)
	if err != nil {
		t.Fatalf("decode new access: %v", err)
	}
	if got.Refresh || got.User.Email != "alice@x.com" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestRefresh_RejectsExpiredAndAccessClaims(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	past := time.Now().Add(-72 * time.Hour)
	old, err := f.codec.WithClock(func() time.Time { return past }).Issue(token.UserClaims{Email: "alice@x.com"}, time.Hour, true)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	expired, err := f.codec.WithClock(func() time.Time { return past }).Decode(old)
	if err != nil {
		t.Fatalf("decode at issue time: %v", err)
	}

	accessTok, _ := f.codec.Issue(token.UserClaims{Email: "alice@x.com"}, time.Hour, false)
	access, _ := f.codec.Decode(accessTok)

	for name, claims := range map[string]*token.SessionClaims{"expired": expired, "access": access, "nil": nil} {
		if _, err := f.svc.Refresh(ctx, claims); !errors.Is(err, domain.ErrExpiredOrInvalid) {
			t.Fatalf("%s: expected ErrExpiredOrInvalid, got %v", name, err)
		}
	}
}

func TestLogout_RevokesJTI(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	tok, _ := f.codec.Issue(token.UserClaims{Email: "alice@x.com"}, time.Hour, false)
	claims, _ := f.codec.Decode(tok)

	if err := f.svc.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	ttl, ok := f.blocklist.revoked[claims.JTI()]
	if !ok {
		t.Fatal("jti not revoked")
	}
	if ttl != DefaultRevocationTTL {
		t.Fatalf("expected ttl %s, got %s", DefaultRevocationTTL, ttl)
	}

	// second logout with the same token is harmless
	if err := f.svc.Logout(ctx, claims); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}

func TestLogout_StoreFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.blocklist.err = errors.New("redis down")

	tok, _ := f.codec.Issue(token.UserClaims{Email: "alice@x.com"}, time.Hour, false)
	claims, _ := f.codec.Decode(tok)

	if err := f.svc.Logout(context.Background(), claims); !errors.Is(err, f.blocklist.err) {
		t.Fatalf("expected store error, got %v", err)
	}
}
