package middleware

import (
	"github.com/labstack/echo/v4"

	"rentline/pkg/errors"
	"rentline/pkg/response"
)

// IdentityMiddleware resolves the caller identity for every protected route.
// Authentication itself is handled upstream (the gateway strips and verifies
// credentials); this service trusts the X-User-ID header it forwards.
type IdentityMiddleware struct{}

func NewIdentityMiddleware() *IdentityMiddleware {
	return &IdentityMiddleware{}
}

func (m *IdentityMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID := c.Request().Header.Get("X-User-ID")
		if userID == "" {
			// Browsers cannot set headers on websocket upgrades; allow the
			// query parameter fallback for that path.
			userID = c.QueryParam("user_id")
		}
		if userID == "" {
			return response.Error(c, errors.Unauthorized("Missing user identity", nil))
		}

		c.Set("uid", userID)
		return next(c)
	}
}
