package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/api/metrics"
	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// Authenticator abstracts the bearer token check.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (domain.Identity, error)
}

// Authenticate resolves the Authorization header and injects the identity
// into the context under KeyUserID and KeyToken.
func Authenticate(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			id, err := authn.Authenticate(c.Request().Context(), header)
			metrics.AuthenticationsTotal.WithLabelValues(authResult(err)).Inc()
			if err != nil {
				return err
			}

			c.Set(KeyUserID, id.UserID)
			c.Set(KeyToken, id.Token)

			return next(c)
		}
	}
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMissingHeader):
		return "missing_header"
	case errors.Is(err, domain.ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, domain.ErrSignatureInvalid):
		return "signature_invalid"
	default:
		return "error"
	}
}
