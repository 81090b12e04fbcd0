package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/bookly/bookly-api/internal/api/metrics"
	"github.com/bookly/bookly-api/internal/core/domain"
	"github.com/bookly/bookly-api/internal/core/guard"
)

const principalKey = "auth.principal"

// Guard runs chain over the request's Authorization header and stores the
// resulting principal in the context. Failures are returned to the central
// error handler untouched.
func Guard(chain guard.Chain) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p, err := chain.Run(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				countRejection(err)
				return err
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// CookieBearer promotes the named cookie to an Authorization bearer header
// when the request carries no Authorization header of its own. It lets the
// refresh route accept the http-only cookie set at login.
func CookieBearer(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Header.Get(echo.HeaderAuthorization) == "" {
				if cookie, err := c.Cookie(name); err == nil && cookie.Value != "" {
					req.Header.Set(echo.HeaderAuthorization, "Bearer "+cookie.Value)
				}
			}
			return next(c)
		}
	}
}

// Principal returns the principal stored by Guard.
func Principal(c echo.Context) (*guard.Principal, bool) {
	p, ok := c.Get(principalKey).(*guard.Principal)
	return p, ok && p != nil
}

func countRejection(err error) {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		metrics.GuardRejectionsTotal.WithLabelValues(ae.Reason).Inc()
	}
}
