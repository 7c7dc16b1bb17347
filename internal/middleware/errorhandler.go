package middleware

import (
	"net/http"
	"runtime/debug"

	"adminportal/internal/apperr"
	"adminportal/internal/audit"
	"adminportal/internal/model"
	"adminportal/internal/tenant"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorHandler is the single global error boundary. Handler errors are
// classified, written to the audit log best-effort through the recorder's
// independent session, and mapped to a sanitized JSON response carrying
// only a correlation id. Raw detail is included only in development mode.
func ErrorHandler(recorder *audit.Recorder, development bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// echo's own errors (404 route misses, bind failures) pass
			// through untouched
			if he, ok := err.(*echo.HTTPError); ok {
				return he
			}

			log := logger.FromEcho(c)
			correlationID := uuid.New()
			status, message, severity := apperr.Classify(err)

			entry := &model.AuditLog{
				CorrelationID: correlationID,
				Severity:      severity,
				Message:       err.Error(),
				Path:          c.Request().URL.Path,
				HTTPStatus:    status,
			}
			ctx := c.Request().Context()
			if sc, ok := tenant.FromContext(ctx); ok && !sc.IsHost() {
				t := sc.Tenant()
				entry.TenantID = &t
			}
			if p, ok := tenant.PrincipalFromContext(ctx); ok {
				u := p.UserID
				entry.UserID = &u
			}
			if severity == model.SeverityCritical || severity == model.SeverityError {
				entry.StackTrace = string(debug.Stack())
			}
			recorder.Record(entry)

			if status >= http.StatusInternalServerError {
				log.Error("request failed",
					zap.String("correlation_id", correlationID.String()),
					zap.Int("status", status),
					zap.Error(err))
			} else {
				log.Warn("request rejected",
					zap.String("correlation_id", correlationID.String()),
					zap.Int("status", status),
					zap.Error(err))
			}
			prometheus.RecordRequestError(status)

			body := echo.Map{"error": message, "correlation_id": correlationID.String()}
			if development {
				body["detail"] = err.Error()
			}
			return c.JSON(status, body)
		}
	}
}
