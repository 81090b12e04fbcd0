package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly-api/internal/api/middleware"
	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/guard"
)

// ctxPrincipal returns the principal stored by the Guard middleware. Its
// absence means the route was mounted without a guard.
func ctxPrincipal(c echo.Context) (*guard.Principal, error) {
	p, ok := middleware.Principal(c)
	if !ok || p.Claims == nil {
		return nil, domain.Unauthenticated(domain.ReasonMissingIdentity, "missing authentication claims", "")
	}
	return p, nil
}

// ctxUser additionally requires the user to have been resolved.
func ctxUser(c echo.Context) (*domain.User, error) {
	p, err := ctxPrincipal(c)
	if err != nil {
		return nil, err
	}
	if p.User == nil {
		return nil, domain.Unauthenticated(domain.ReasonMissingIdentity, "user not resolved", "")
	}
	return p.User, nil
}
