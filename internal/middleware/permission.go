package middleware

import (
	"context"
	"net/http"
	"strings"

	"adminportal/internal/tenant"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PermissionChecker is the authoritative capability query the gate
// delegates to.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, tenantID uuid.UUID, code string) (bool, error)
}

// PolicyPrefix is the legacy policy-name convention: "Permission:<code>".
const PolicyPrefix = "Permission:"

// RequirePermission gates a route behind "does the current user hold this
// permission within the current tenant". Every extraction failure is a
// plain 403, never an error: a request that cannot prove authorization is
// denied, not crashed.
func RequirePermission(checker PermissionChecker, code string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)
			ctx := c.Request().Context()

			principal, ok := tenant.PrincipalFromContext(ctx)
			if !ok || principal.UserID == uuid.Nil {
				prometheus.RecordAuthError("permission_no_principal")
				return deny(c)
			}
			sc, ok := tenant.FromContext(ctx)
			if !ok {
				prometheus.RecordAuthError("permission_no_scope")
				return deny(c)
			}

			granted, err := checker.HasPermission(ctx, principal.UserID, sc.Tenant(), code)
			if err != nil {
				// cannot prove authorization: deny, log for operators
				log.Error("permission check failed",
					zap.String("permission", code),
					zap.String("user_id", principal.UserID.String()),
					zap.Error(err))
				prometheus.RecordAuthError("permission_check_error")
				return deny(c)
			}
			if !granted {
				log.Warn("permission denied",
					zap.String("permission", code),
					zap.String("user_id", principal.UserID.String()),
					zap.String("tenant_id", sc.Tenant().String()))
				prometheus.RecordPermissionDenied(code)
				return deny(c)
			}

			return next(c)
		}
	}
}

// RequirePolicy preserves the legacy "Permission:<code>" policy-name
// convention for route tables that still declare policies as strings. A
// malformed policy name fails closed.
func RequirePolicy(checker PermissionChecker, policy string) echo.MiddlewareFunc {
	code, ok := ParsePolicy(policy)
	if !ok {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				prometheus.RecordAuthError("malformed_policy")
				return deny(c)
			}
		}
	}
	return RequirePermission(checker, code)
}

// ParsePolicy extracts the permission code from a "Permission:<code>"
// policy name.
func ParsePolicy(policy string) (string, bool) {
	if !strings.HasPrefix(policy, PolicyPrefix) {
		return "", false
	}
	code := strings.TrimSpace(strings.TrimPrefix(policy, PolicyPrefix))
	if code == "" {
		return "", false
	}
	return code, true
}

func deny(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
}
