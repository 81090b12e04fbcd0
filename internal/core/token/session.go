// Package token issues and decodes the signed tokens used by the API:
// session tokens (access/refresh JWTs) and action-link tokens for email flows.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bookly/bookly-api/internal/core/domain"
)

const (
	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 48 * time.Hour
)

// UserClaims is the "user" sub-claim embedded in every session token.
// Role is empty on refresh tokens.
type UserClaims struct {
	Email   string `json:"email"`
	UserUID string `json:"user_uid"`
	Role    string `json:"role,omitempty"`
}

// SessionClaims is the full payload of an access or refresh token.
type SessionClaims struct {
	User    UserClaims `json:"user"`
	Refresh bool       `json:"refresh"`
	jwt.RegisteredClaims
}

// JTI returns the unique token identifier.
func (c *SessionClaims) JTI() string {
	return c.ID
}

// ExpiresAtTime returns the absolute expiry, or the zero time if unset.
func (c *SessionClaims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// SessionCodec signs and verifies session tokens with a process-wide HMAC secret.
type SessionCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewSessionCodec validates the configured algorithm. Only HMAC algorithms are
// accepted since the secret is symmetric.
func NewSessionCodec(secret, algorithm string) (*SessionCodec, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is empty")
	}
	if algorithm == "" {
		algorithm = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", algorithm)
	}
	return &SessionCodec{secret: []byte(secret), method: method, now: time.Now}, nil
}

// WithClock returns a copy of the codec reading time from now.
func (c *SessionCodec) WithClock(now func() time.Time) *SessionCodec {
	cp := *c
	cp.now = now
	return &cp
}

// Now returns the codec's current time.
func (c *SessionCodec) Now() time.Time {
	return c.now()
}

// Issue signs a new token for user, valid for ttl. A fresh jti is generated
// on every call.
func (c *SessionCodec) Issue(user UserClaims, ttl time.Duration, refresh bool) (string, error) {
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	now := c.now()
	claims := &SessionClaims{
		User:    user,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of tokenString. It returns
// domain.ErrExpiredToken or domain.ErrMalformedToken on failure.
func (c *SessionCodec) Decode(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// Expiry is only reported once the signature has been verified.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", domain.ErrMalformedToken)
	}
	return claims, nil
}
