package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role groups permissions for assignment to users. A nil TenantID denotes a
// system-wide role visible to every tenant.
type Role struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null;index"`
	Description string    `json:"description,omitempty" gorm:"type:varchar(255)"`
	IsDefault   bool      `json:"is_default" gorm:"default:false"`
	Owned
	AuditFields
	SoftDelete

	Permissions []RolePermission `json:"permissions,omitempty" gorm:"foreignKey:RoleID"`
}

func (r *Role) PrimaryKey() uuid.UUID { return r.ID }

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RolePermission links a role to a permission inside one tenant context.
type RolePermission struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	RoleID       uuid.UUID  `json:"role_id" gorm:"type:uuid;not null;uniqueIndex:idx_role_perm_tenant"`
	PermissionID uuid.UUID  `json:"permission_id" gorm:"type:uuid;not null;uniqueIndex:idx_role_perm_tenant"`
	TenantID     *uuid.UUID `json:"tenant_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_role_perm_tenant"`
	CreatedAt    int64      `json:"created_at" gorm:"autoCreateTime"`

	Permission Permission `json:"permission,omitempty" gorm:"foreignKey:PermissionID"`
}

func (rp *RolePermission) PrimaryKey() uuid.UUID { return rp.ID }

func (rp *RolePermission) TenantRef() *uuid.UUID { return rp.TenantID }

func (rp *RolePermission) BeforeCreate(tx *gorm.DB) error {
	if rp.ID == uuid.Nil {
		rp.ID = uuid.New()
	}
	return nil
}
