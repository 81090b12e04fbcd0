// Package guard implements the request-time authentication pipeline.
//
// A Chain is an ordered list of stages. Each stage inspects or enriches the
// Principal and may stop the chain with a *domain.AuthError:
//
//	ExtractBearer → Decode → NotRevoked → RequireKind → ResolveUser → RequireVerified → RequireRole
//
// Routes build their own chain from the same stage constructors, so the
// decode and revocation logic exists once.
package guard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/ports"
	"github.com/bookly/bookly-api/internal/core/token"
)

// Kind selects which session token a route accepts.
type Kind int

const (
	Access Kind = iota
	Refresh
)

func (k Kind) String() string {
	if k == Refresh {
		return "refresh"
	}
	return "access"
}

// Principal accumulates what the stages learn about the caller.
type Principal struct {
	Authorization string
	Token         string
	Claims        *token.SessionClaims
	User          *domain.User
}

// Stage is a single step of the pipeline.
type Stage interface {
	Check(ctx context.Context, p *Principal) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(ctx context.Context, p *Principal) error

// Check implements Stage.
func (f StageFunc) Check(ctx context.Context, p *Principal) error {
	return f(ctx, p)
}

// Chain runs its stages in order and stops at the first failure.
type Chain []Stage

// With returns a new chain with stages appended. The receiver is not modified.
func (c Chain) With(stages ...Stage) Chain {
	out := make(Chain, 0, len(c)+len(stages))
	out = append(out, c...)
	return append(out, stages...)
}

// Run starts a new principal from the raw Authorization header value.
func (c Chain) Run(ctx context.Context, authorization string) (*Principal, error) {
	p := &Principal{Authorization: authorization}
	if err := c.Resume(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Resume runs the chain over an existing principal.
func (c Chain) Resume(ctx context.Context, p *Principal) error {
	for _, s := range c {
		if err := s.Check(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Decoder is the part of the session codec the pipeline needs.
type Decoder interface {
	Decode(tokenString string) (*token.SessionClaims, error)
}

// UserFinder resolves the identity embedded in a token.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Bearer is the common prefix of every authenticated route.
func Bearer(kind Kind, codec Decoder, blocklist ports.Blocklist) Chain {
	return Chain{
		ExtractBearer(),
		Decode(codec),
		NotRevoked(blocklist),
		RequireKind(kind),
	}
}

// Roles is the composable role guard: verified account and role in roles.
func Roles(roles ...string) Chain {
	return Chain{RequireVerified(), RequireRole(roles...)}
}

// ExtractBearer requires an "Authorization: Bearer <token>" credential.
func ExtractBearer() Stage {
	return StageFunc(func(_ context.Context, p *Principal) error {
		scheme, credentials, ok := strings.Cut(strings.TrimSpace(p.Authorization), " ")
		credentials = strings.TrimSpace(credentials)
		if !ok || !strings.EqualFold(scheme, "bearer") || credentials == "" {
			return domain.Unauthenticated(domain.ReasonMissingCredentials,
				"no credentials provided", "send an Authorization: Bearer <token> header")
		}
		p.Token = credentials
		return nil
	})
}

// Decode verifies the token signature and expiry.
func Decode(codec Decoder) Stage {
	return StageFunc(func(_ context.Context, p *Principal) error {
		claims, err := codec.Decode(p.Token)
		switch {
		case errors.Is(err, domain.ErrExpiredToken):
			return domain.Forbidden(domain.ReasonExpiredToken,
				"token has expired", "refresh the access token or log in again")
		case err != nil:
			return domain.Forbidden(domain.ReasonInvalidToken,
				"token is invalid", "log in again to get a new token")
		}
		p.Claims = claims
		return nil
	})
}

// NotRevoked rejects tokens whose jti is in the blocklist.
func NotRevoked(blocklist ports.Blocklist) Stage {
	return StageFunc(func(ctx context.Context, p *Principal) error {
		revoked, err := blocklist.IsRevoked(ctx, p.Claims.JTI())
		if err != nil {
			return fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return domain.Forbidden(domain.ReasonRevokedToken,
				"token has been revoked", "log in again to get a new token")
		}
		return nil
	})
}

// RequireKind rejects refresh tokens on access routes and vice versa.
func RequireKind(kind Kind) Stage {
	return StageFunc(func(_ context.Context, p *Principal) error {
		if kind == Access && p.Claims.Refresh {
			return domain.Forbidden(domain.ReasonAccessTokenRequired,
				"provide a valid access token", "")
		}
		if kind == Refresh && !p.Claims.Refresh {
			return domain.Forbidden(domain.ReasonRefreshTokenRequired,
				"provide a valid refresh token", "")
		}
		return nil
	})
}

// ResolveUser loads the account named by the token's email claim.
func ResolveUser(users UserFinder) Stage {
	return StageFunc(func(ctx context.Context, p *Principal) error {
		email := p.Claims.User.Email
		if email == "" {
			return domain.Unauthenticated(domain.ReasonMissingIdentity, "email missing in token", "")
		}
		user, err := users.FindByEmail(ctx, email)
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.Unauthenticated(domain.ReasonUnknownUser, "user no longer exists", "")
		}
		if err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}
		p.User = user
		return nil
	})
}

// RequireVerified rejects accounts that have not confirmed their email.
func RequireVerified() Stage {
	return StageFunc(func(_ context.Context, p *Principal) error {
		if p.User == nil {
			return domain.Unauthenticated(domain.ReasonMissingIdentity, "user not resolved", "")
		}
		if !p.User.IsVerified {
			return domain.Forbidden(domain.ReasonAccountNotVerified,
				"account not verified", "please check your email for verification")
		}
		return nil
	})
}

// RequireRole rejects users whose role is not in roles.
func RequireRole(roles ...string) Stage {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return StageFunc(func(_ context.Context, p *Principal) error {
		if p.User == nil {
			return domain.Unauthenticated(domain.ReasonMissingIdentity, "user not resolved", "")
		}
		if _, ok := allowed[p.User.Role]; !ok {
			return domain.Forbidden(domain.ReasonNotPermitted,
				"you are not permitted to perform this action", "")
		}
		return nil
	})
}
