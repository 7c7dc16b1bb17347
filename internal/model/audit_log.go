package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Severity classifies audit-log entries.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// AuditLog is written by the error-handling middleware through an
// independent database session, so it deliberately carries no audit embeds
// and no tenant-owned scoping.
type AuditLog struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CorrelationID uuid.UUID  `json:"correlation_id" gorm:"type:uuid;index;not null"`
	Severity      Severity   `json:"severity" gorm:"type:varchar(20);not null"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty" gorm:"type:uuid;index"`
	UserID        *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Message       string     `json:"message" gorm:"type:text"`
	Path          string     `json:"path,omitempty" gorm:"type:varchar(255)"`
	HTTPStatus    int        `json:"http_status"`
	StackTrace    string     `json:"stack_trace,omitempty" gorm:"type:text"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
