package middleware

import (
	"net"
	"net/http"
	"strings"

	"adminportal/internal/service"
	"adminportal/internal/tenant"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// resolverBypass lists routes that must answer regardless of the Host
// header: load balancers and scrapers probe them with arbitrary hosts.
var resolverBypass = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// TenantResolver derives the tenant scope for subdomain-routed traffic. The
// reserved host subdomain yields an unrestricted host scope; any other
// subdomain must match an active tenant's slug or the request terminates
// with 404 before any handler runs. Health and metrics probes skip
// resolution entirely.
func TenantResolver(tenants *service.TenantService, hostSubdomain string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := resolverBypass[c.Path()]; ok {
				bindScope(c, tenant.HostScope())
				return next(c)
			}

			log := logger.FromEcho(c)

			slug := Subdomain(c.Request().Host)
			if slug == "" || slug == hostSubdomain {
				bindScope(c, tenant.HostScope())
				return next(c)
			}

			t, err := tenants.ResolveActiveSlug(c.Request().Context(), slug)
			if err != nil {
				log.Warn("tenant resolution failed", zap.String("slug", slug), zap.Error(err))
				prometheus.RecordAuthError("tenant_not_resolved")
				return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
			}

			bindScope(c, tenant.ForTenant(t.ID, t.Slug))
			return next(c)
		}
	}
}

// Subdomain extracts the label before the first dot of the host, without
// any port suffix. Hosts with no dot (bare domain, localhost) yield "".
func Subdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	i := strings.IndexByte(host, '.')
	if i <= 0 {
		return ""
	}
	return strings.ToLower(host[:i])
}

// bindScope stores the scope in the request context so repositories and the
// tenant query filter see it, and mirrors it into the echo context for
// handlers.
func bindScope(c echo.Context, sc tenant.Scope) {
	ctx := tenant.NewContext(c.Request().Context(), sc)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("tenant_scope", sc)
}
