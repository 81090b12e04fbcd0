package token

import (
	"errors"
	"testing"
	"time"

	"github.com/bookly/bookly-api/internal/core/domain"
)

func TestActionCodec_RoundTrip(t *testing.T) {
	codec, err := NewActionCodec("secret", 0)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	codec = codec.WithClock(fixedClock(epoch))

	tok, err := codec.Issue(map[string]string{"email": "alice@x.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	data, err := codec.Decode(tok)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data["email"] != "alice@x.com" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestActionCodec_Expires(t *testing.T) {
	codec, _ := NewActionCodec("secret", 0)
	tok, _ := codec.WithClock(fixedClock(epoch)).Issue(map[string]string{"email": "a@x.com"})

	late := codec.WithClock(fixedClock(epoch.Add(DefaultActionTTL)))
	if _, err := late.Decode(tok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	early := codec.WithClock(fixedClock(epoch.Add(DefaultActionTTL - time.Second)))
	if _, err := early.Decode(tok); err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
}

func TestActionCodec_NotInterchangeableWithSessionTokens(t *testing.T) {
	session, _ := NewSessionCodec("secret", "HS256")
	action, _ := NewActionCodec("secret", 0)
	session = session.WithClock(fixedClock(epoch))
	action = action.WithClock(fixedClock(epoch))

	sessionTok, _ := session.Issue(UserClaims{Email: "a@x.com"}, time.Hour, false)
	if _, err := action.Decode(sessionTok); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("session token accepted as action token: %v", err)
	}

	actionTok, _ := action.Issue(map[string]string{"email": "a@x.com"})
	if _, err := session.Decode(actionTok); !errors.Is(err, domain.ErrMalformedToken) {
		t.Fatalf("action token accepted as session token: %v", err)
	}
}

func TestActionCodec_Garbage(t *testing.T) {
	codec, _ := NewActionCodec("secret", time.Hour)
	if _, err := codec.Decode("garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
