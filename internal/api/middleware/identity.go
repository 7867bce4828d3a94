package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/keystone-labs/rbac-core/internal/core/domain"
)

// Context keys set by Authenticate.
const (
	KeyUserID = "user_id"
	KeyToken  = "token"
)

// IdentityFrom returns the identity Authenticate placed on c.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	userID, _ := c.Get(KeyUserID).(string)
	token, _ := c.Get(KeyToken).(string)
	if userID == "" || token == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{UserID: userID, Token: token}, true
}
