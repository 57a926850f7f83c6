package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neuroguard/patient-registry/internal/core/authz"
)

// Require enforces that the caller's role permits the given operation.
// The decision comes from the same authz table the client consults; this
// is the server-side (authoritative) evaluation of it.
func Require(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if !authz.Can(authz.Role(role), op) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "access forbidden"})
			}
			return next(c)
		}
	}
}
