package token

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"

	"github.com/bookly/bookly-api/internal/core/domain"
)

const (
	DefaultActionTTL = 24 * time.Hour

	actionSalt     = "email.configuration"
	actionAudience = "bookly:action"
)

type actionClaims struct {
	Data map[string]string `json:"data"`
	jwt.RegisteredClaims
}

// ActionCodec signs the single-purpose tokens embedded in email links.
// Its key is derived from the shared secret with a dedicated salt, so
// session tokens and action tokens are never interchangeable.
type ActionCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewActionCodec derives the action signing key from secret.
func NewActionCodec(secret string, ttl time.Duration) (*ActionCodec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	if ttl <= 0 {
		ttl = DefaultActionTTL
	}

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), []byte(actionSalt), []byte(actionAudience))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("token: derive action key: %w", err)
	}
	return &ActionCodec{key: key, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the codec reading time from now.
func (c *ActionCodec) WithClock(now func() time.Time) *ActionCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue signs data into a URL-safe token valid for the codec's ttl.
func (c *ActionCodec) Issue(data map[string]string) (string, error) {
	now := c.now()
	claims := &actionClaims{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{actionAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign action token: %w", err)
	}
	return signed, nil
}

// Decode returns the data carried by tokenString, or domain.ErrInvalidToken
// if it is expired, tampered with or not an action token.
func (c *ActionCodec) Decode(tokenString string) (map[string]string, error) {
	claims := &actionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(actionAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Data == nil {
		claims.Data = map[string]string{}
	}
	return claims.Data, nil
}
