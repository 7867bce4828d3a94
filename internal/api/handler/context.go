package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/api/middleware"
	"github.com/keystone-labs/rbac-core/internal/core/domain"
	"github.com/keystone-labs/rbac-core/internal/core/ports"
)

// ctxIdentity returns the identity injected by the Authenticate middleware.
// Its absence means the route was wired without the gate, which is a 401
// rather than a panic.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.Unauthenticated(domain.ErrMissingHeader)
	}
	return id, nil
}

// ctxActor pairs the authenticated user with the request origin.
func ctxActor(c echo.Context) (ports.Actor, error) {
	id, err := ctxIdentity(c)
	if err != nil {
		return ports.Actor{}, err
	}
	return ports.Actor{UserID: id.UserID, IP: c.RealIP()}, nil
}
