package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantStatus gates whether a tenant's users may authenticate.
type TenantStatus string

const (
	TenantActive    TenantStatus = "active"
	TenantInactive  TenantStatus = "inactive"
	TenantPending   TenantStatus = "pending"
	TenantSuspended TenantStatus = "suspended"
)

// Tenant represents an isolated customer organization. The slug doubles as
// the subdomain key used by tenant resolution.
type Tenant struct {
	ID       uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string       `json:"name" gorm:"type:varchar(100);not null"`
	Slug     string       `json:"slug" gorm:"type:varchar(63);uniqueIndex;not null"`
	Status   TenantStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
	LogoPath string       `json:"logo_path,omitempty" gorm:"type:varchar(255)"`
	AuditFields
	SoftDelete
}

func (t *Tenant) PrimaryKey() uuid.UUID { return t.ID }

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
