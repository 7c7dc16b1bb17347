package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auditable is implemented by every entity that carries creation/update
// audit fields. The repository stamps entities only through this interface,
// so an entity that wants audit stamping has to opt in explicitly.
type Auditable interface {
	StampCreated(by uuid.UUID, at time.Time)
	StampUpdated(by uuid.UUID, at time.Time)
}

// SoftDeletable is implemented by entities that are marked deleted instead
// of being removed. The repository delete path checks for this interface to
// decide between soft and hard delete.
type SoftDeletable interface {
	MarkDeleted(by uuid.UUID, at time.Time)
	Deleted() bool
}

// TenantOwned is implemented by entities scoped to a single tenant. A nil
// tenant reference marks a global/host-level row visible to every tenant.
// The tenant query filter only attaches to types implementing this.
type TenantOwned interface {
	TenantRef() *uuid.UUID
}

// AuditFields is embedded by auditable entities.
type AuditFields struct {
	CreatedAt time.Time `json:"created_at"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy uuid.UUID `json:"updated_by" gorm:"type:uuid"`
}

func (a *AuditFields) StampCreated(by uuid.UUID, at time.Time) {
	a.CreatedAt = at
	a.CreatedBy = by
	a.UpdatedAt = at
	a.UpdatedBy = by
}

func (a *AuditFields) StampUpdated(by uuid.UUID, at time.Time) {
	a.UpdatedAt = at
	a.UpdatedBy = by
}

// SoftDelete is embedded by soft-deletable entities. gorm.DeletedAt makes
// gorm exclude marked rows from ordinary queries automatically.
type SoftDelete struct {
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	DeletedBy *uuid.UUID     `json:"-" gorm:"type:uuid"`
}

func (s *SoftDelete) MarkDeleted(by uuid.UUID, at time.Time) {
	// Keep the original deletion record on repeated deletes.
	if s.DeletedAt.Valid {
		return
	}
	s.DeletedAt = gorm.DeletedAt{Time: at, Valid: true}
	s.DeletedBy = &by
}

func (s *SoftDelete) Deleted() bool {
	return s.DeletedAt.Valid
}

// Owned is embedded by tenant-owned entities. A nil TenantID denotes a
// global/host-level row.
type Owned struct {
	TenantID *uuid.UUID `json:"tenant_id,omitempty" gorm:"type:uuid;index"`
}

func (o *Owned) TenantRef() *uuid.UUID {
	return o.TenantID
}

// SetTenant binds the row to a tenant. The repository calls this on insert
// when the current scope is tenant-bound and the row has no owner yet.
func (o *Owned) SetTenant(id uuid.UUID) {
	o.TenantID = &id
}
