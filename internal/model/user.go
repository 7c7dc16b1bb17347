package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus gates whether a user may authenticate.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserLocked   UserStatus = "locked"
)

// User represents an account. A nil TenantID denotes a host-level account
// that is not restricted to any single tenant.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Username     string     `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	FirstName    string     `json:"first_name,omitempty" gorm:"type:varchar(50)"`
	LastName     string     `json:"last_name,omitempty" gorm:"type:varchar(50)"`
	AvatarPath   string     `json:"avatar_path,omitempty" gorm:"type:varchar(255)"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	Owned
	AuditFields
	SoftDelete

	Roles []UserRole `json:"roles,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) PrimaryKey() uuid.UUID { return u.ID }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserRole associates a user with a role inside one tenant context. The
// TenantID component lets the same user/role pair carry different scope per
// tenant; a nil tenant marks a host-level assignment.
type UserRole struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_role_tenant"`
	RoleID uuid.UUID `json:"role_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_role_tenant"`
	// part of the composite key, separate from the scoping embed so the
	// unique index covers it
	TenantID  *uuid.UUID `json:"tenant_id,omitempty" gorm:"type:uuid;uniqueIndex:idx_user_role_tenant"`
	CreatedAt int64      `json:"created_at" gorm:"autoCreateTime"`

	Role Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

func (ur *UserRole) PrimaryKey() uuid.UUID { return ur.ID }

func (ur *UserRole) TenantRef() *uuid.UUID { return ur.TenantID }

func (ur *UserRole) BeforeCreate(tx *gorm.DB) error {
	if ur.ID == uuid.Nil {
		ur.ID = uuid.New()
	}
	return nil
}
