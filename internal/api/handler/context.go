package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/neuroguard/patient-registry/internal/api/middleware"
	"github.com/neuroguard/patient-registry/internal/core/authz"
	"github.com/neuroguard/patient-registry/internal/core/ports"
)

// ctxActor extracts the acting identity injected by the Auth middleware
// and fast-fails before any service call: a missing role means the
// middleware did not run or the token carried no usable claims.
func ctxActor(c echo.Context) (ports.Actor, error) {
	role, _ := c.Get(middleware.CtxRole).(string)
	if role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	id, _ := c.Get(middleware.CtxUserID).(string)
	username, _ := c.Get(middleware.CtxUsername).(string)

	return ports.Actor{
		ID:       id,
		Username: username,
		Role:     authz.Role(role),
	}, nil
}
