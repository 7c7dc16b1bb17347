package middleware

import (
	"net/http"
	"strings"

	"adminportal/internal/tenant"
	"adminportal/pkg/jwtutil"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the bearer token and binds both the principal
// and the claims-derived tenant scope into the request context. It runs
// after the tenant resolver and overwrites the resolver's scope, so
// authenticated API clients that are not subdomain-routed still get the
// correct tenant binding.
func AuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// claims-based scope: nil tenant claim means a host-level token,
			// matching the resolver's reserved-subdomain branch
			var sc tenant.Scope
			if claims.TenantID != nil {
				sc = tenant.ForTenant(*claims.TenantID, claims.TenantSlug)
			} else {
				sc = tenant.HostScope()
			}
			bindScope(c, sc)

			principal := tenant.Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
			ctx := tenant.WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)

			log.Debug("Request authenticated",
				zap.String("user_id", claims.UserID.String()),
				zap.Bool("host_scope", sc.IsHost()))

			return next(c)
		}
	}
}
