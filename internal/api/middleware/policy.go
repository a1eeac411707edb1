package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenfield-library/lending-system/internal/core/policy"
)

// RequireOperation adapts the pure policy.Authorize gate to the router. It
// runs after Auth, before any handler logic, so a denied caller never
// reaches a service and never causes a store mutation.
func RequireOperation(op policy.Operation) echo.MiddlewareFunc {
	return RequireAnyOperation(op)
}

// RequireAnyOperation passes when the caller's role is authorized for at
// least one of the given operations. Used for routes that serve more than
// one operation, like the request listing that is scoped per role.
func RequireAnyOperation(ops ...policy.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			for _, op := range ops {
				if policy.Authorize(role, op) == nil {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
