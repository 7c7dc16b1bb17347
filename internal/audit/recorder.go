// Package audit writes audit-log rows through a database session that is
// independent of the request's own data access, so a failed or rolled-back
// request cannot discard the audit trail.
package audit

import (
	"context"

	"adminportal/internal/model"
	"adminportal/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recorder persists audit-log entries best-effort: failures are logged and
// swallowed, never returned, so failure to log can never mask or replace
// the error being recorded.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder opens an independent session over the shared connection pool.
// The session carries a background context with no tenant scope, so audit
// rows are written unfiltered regardless of the failing request's tenant.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db.Session(&gorm.Session{NewDB: true, Context: context.Background()})}
}

// Record writes the entry. It never returns an error and recovers its own
// panics.
func (r *Recorder) Record(entry *model.AuditLog) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.GetLogger().Error("audit recorder panic", zap.Any("panic", rec))
		}
	}()

	if err := r.db.Create(entry).Error; err != nil {
		logger.GetLogger().Error("failed to write audit log",
			zap.Error(err),
			zap.String("correlation_id", entry.CorrelationID.String()),
			zap.String("message", entry.Message))
	}
}
