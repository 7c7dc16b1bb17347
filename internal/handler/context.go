package handler

import (
	"adminportal/internal/tenant"

	"github.com/labstack/echo/v4"
)

// scopeFrom reads the tenant scope resolved by the middleware chain.
// Requests that never passed through a resolver get the host scope.
func scopeFrom(c echo.Context) tenant.Scope {
	sc, ok := tenant.FromContext(c.Request().Context())
	if !ok {
		return tenant.HostScope()
	}
	return sc
}
