package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// identity is the resolved caller injected by the Auth middleware.
type identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}

// ctxIdentity extracts the auth claims and performs a fast-fail check before
// any service call: id and role must be present, which proves the middleware
// ran and the token carried a usable identity.
func ctxIdentity(c echo.Context) (identity, error) {
	id := identity{}
	id.UserID, _ = c.Get("user_id").(string)
	id.Email, _ = c.Get("email").(string)
	id.Name, _ = c.Get("name").(string)
	id.Role, _ = c.Get("role").(string)

	if id.UserID == "" || id.Role == "" {
		return identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
