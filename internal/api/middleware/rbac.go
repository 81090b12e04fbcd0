package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/guard"
)

// RBAC enforces role-based access control on top of Guard: the account must
// be verified and hold one of allowedRoles.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	stages := guard.Roles(allowedRoles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := Principal(c)
			if !ok {
				err := domain.Unauthenticated(domain.ReasonMissingIdentity, "request is not authenticated", "")
				countRejection(err)
				return err
			}
			if err := stages.Resume(c.Request().Context(), p); err != nil {
				countRejection(err)
				return err
			}
			return next(c)
		}
	}
}
