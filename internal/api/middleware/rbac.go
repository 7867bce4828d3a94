package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/keystone-labs/rbac-core/internal/api/metrics"
	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// Authorizer abstracts the audited role and permission gates.
type Authorizer interface {
	RequireRole(ctx context.Context, userID, role, origin string) (ports.Decision, error)
	CheckPermission(ctx context.Context, userID, action, origin string) (ports.Decision, error)
}

// RequireRole admits only callers whose role is named role. Must run after
// Authenticate.
func RequireRole(authz Authorizer, role string, log zerolog.Logger) echo.MiddlewareFunc {
	return gate("role", log, func(c echo.Context, userID string) (ports.Decision, error) {
		return authz.RequireRole(c.Request().Context(), userID, role, c.RealIP())
	})
}

// RequirePermission admits only callers whose role grants action. Must run
// after Authenticate.
func RequirePermission(authz Authorizer, action string, log zerolog.Logger) echo.MiddlewareFunc {
	return gate("permission", log, func(c echo.Context, userID string) (ports.Decision, error) {
		return authz.CheckPermission(c.Request().Context(), userID, action, c.RealIP())
	})
}

func gate(name string, log zerolog.Logger, check func(echo.Context, string) (ports.Decision, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return domain.Unauthenticated(domain.ErrMissingHeader)
			}

			decision, err := check(c, id.UserID)
			metrics.GateDecisionsTotal.WithLabelValues(name, gateResult(decision, err)).Inc()
			if !decision.Audited && !infraFault(err) {
				metrics.AuditWriteFailuresTotal.WithLabelValues(name).Inc()
				log.Warn().Str("gate", name).Str("user_id", id.UserID).Str("path", c.Path()).
					Msg("gate decision was not audited")
			}
			if err != nil {
				return err
			}
			if !decision.Allowed {
				return domain.Forbidden(domain.ErrPermissionDenied)
			}
			return next(c)
		}
	}
}

func gateResult(d ports.Decision, err error) string {
	switch {
	case d.Allowed:
		return "allow"
	case infraFault(err):
		return "error"
	default:
		return "deny"
	}
}

// infraFault reports whether err came from a failed lookup rather than a
// decision. Such failures carry no audit guarantee.
func infraFault(err error) bool {
	return err != nil && domain.KindOf(err) == domain.KindInternal
}
