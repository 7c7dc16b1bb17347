package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Permission is a named, data-defined grant checked at authorization time.
// Codes are uppercase snake, e.g. "TENANT_CREATE". A nil TenantID marks a
// global permission available to every tenant.
type Permission struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Code        string    `json:"code" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description,omitempty" gorm:"type:varchar(255)"`
	Owned
	AuditFields
}

func (p *Permission) PrimaryKey() uuid.UUID { return p.ID }

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
