package repository

import (
	"context"
	"errors"

	"adminportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tenantMatch returns the predicate matching join rows for one tenant
// context. The empty-uuid sentinel matches only host-level (NULL) rows;
// a real tenant also admits host-level rows, which is how global role
// assignments and grants apply inside every tenant.
func tenantMatch(tenantID uuid.UUID) (string, []any) {
	if tenantID == uuid.Nil {
		return "tenant_id IS NULL", nil
	}
	return "tenant_id = ? OR tenant_id IS NULL", []any{tenantID}
}

// Stores bundles the gorm-backed data access used by the domain services.
type Stores struct {
	Tenants         *TenantStore
	Users           *UserStore
	Roles           *RoleStore
	Permissions     *PermissionStore
	Addresses       *Repository[model.Address]
	Countries       *Repository[model.Country]
	States          *Repository[model.State]
	UserRoles       *Repository[model.UserRole]
	RolePermissions *Repository[model.RolePermission]
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Tenants:         &TenantStore{Repository: New[model.Tenant](db)},
		Users:           &UserStore{Repository: New[model.User](db)},
		Roles:           &RoleStore{Repository: New[model.Role](db)},
		Permissions:     &PermissionStore{Repository: New[model.Permission](db)},
		Addresses:       New[model.Address](db),
		Countries:       New[model.Country](db),
		States:          New[model.State](db),
		UserRoles:       New[model.UserRole](db),
		RolePermissions: New[model.RolePermission](db),
	}
}

// TenantStore adds slug lookups to the generic tenant repository. Tenants
// themselves are not tenant-owned, so these queries run unfiltered.
type TenantStore struct {
	*Repository[model.Tenant]
}

func (s *TenantStore) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return s.First(ctx, "slug = ?", slug)
}

func (s *TenantStore) FindActiveBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	return s.First(ctx, "slug = ? AND status = ?", slug, model.TenantActive)
}

// UserStore adds identity lookups and the role/permission joins to the
// generic user repository.
type UserStore struct {
	*Repository[model.User]
}

// FindByEmail preloads role assignments so login can embed the role claim
// without a second round trip.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.DB(ctx).Preload("Roles.Role").Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.First(ctx, "username = ?", username)
}

// RoleIDsForUser returns the ids of roles assigned to the user within the
// given tenant context.
func (s *UserStore) RoleIDsForUser(ctx context.Context, userID, tenantID uuid.UUID) ([]uuid.UUID, error) {
	cond, args := tenantMatch(tenantID)
	var ids []uuid.UUID
	err := s.DB(ctx).Model(&model.UserRole{}).
		Where("user_id = ?", userID).
		Where(cond, args...).
		Pluck("role_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RolesGrantPermission reports whether any of the roles is linked, within
// the tenant context, to the permission with the given code.
func (s *UserStore) RolesGrantPermission(ctx context.Context, roleIDs []uuid.UUID, tenantID uuid.UUID, code string) (bool, error) {
	if len(roleIDs) == 0 {
		return false, nil
	}
	cond, args := tenantMatch(tenantID)
	var n int64
	err := s.DB(ctx).Model(&model.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Where("permissions.code = ?", code).
		Where(cond, args...).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PermissionCodesForUser returns every permission code the user holds within
// the tenant context, for embedding into issued tokens.
func (s *UserStore) PermissionCodesForUser(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	roleIDs, err := s.RoleIDsForUser(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	if len(roleIDs) == 0 {
		return nil, nil
	}
	cond, args := tenantMatch(tenantID)
	var codes []string
	err = s.DB(ctx).Model(&model.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Where(cond, args...).
		Distinct().
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// RoleStore adds name lookups and grant management to the generic role
// repository.
type RoleStore struct {
	*Repository[model.Role]
}

func (s *RoleStore) FindByName(ctx context.Context, name string) (*model.Role, error) {
	return s.First(ctx, "name = ?", name)
}

// PermissionStore adds code lookups to the generic permission repository.
type PermissionStore struct {
	*Repository[model.Permission]
}

func (s *PermissionStore) FindByCode(ctx context.Context, code string) (*model.Permission, error) {
	return s.First(ctx, "code = ?", code)
}

// InUse reports whether any role is linked to the permission.
func (s *PermissionStore) InUse(ctx context.Context, permissionID uuid.UUID) (bool, error) {
	var n int64
	err := s.DB(ctx).Model(&model.RolePermission{}).
		Where("permission_id = ?", permissionID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
