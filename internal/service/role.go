package service

import (
	"context"
	"strings"

	"adminportal/internal/apperr"
	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
)

// RoleStore is the persistence surface the role service needs.
type RoleStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	Page(ctx context.Context, offset, limit int, query any, args ...any) ([]model.Role, int64, error)
	Create(ctx context.Context, r *model.Role) error
	Update(ctx context.Context, r *model.Role) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// RolePermissionStore manages role/permission join rows.
type RolePermissionStore interface {
	First(ctx context.Context, query any, args ...any) (*model.RolePermission, error)
	List(ctx context.Context, query any, args ...any) ([]model.RolePermission, error)
	Create(ctx context.Context, rp *model.RolePermission) error
	DeleteWhere(ctx context.Context, query any, args ...any) error
}

// PermissionLookup is the slice of permission access the role service needs.
type PermissionLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Permission, error)
}

// RoleService implements role lifecycle and grant management.
type RoleService struct {
	roles       RoleStore
	grants      RolePermissionStore
	permissions PermissionLookup
}

func NewRoleService(roles RoleStore, grants RolePermissionStore, permissions PermissionLookup) *RoleService {
	return &RoleService{roles: roles, grants: grants, permissions: permissions}
}

// CreateRoleInput carries the fields accepted on role creation.
type CreateRoleInput struct {
	Name        string
	Description string
	IsDefault   bool
}

// Create validates the name and enforces uniqueness within the visible
// scope (the tenant filter limits the lookup to the caller's tenant plus
// global roles).
func (s *RoleService) Create(ctx context.Context, in CreateRoleInput) (*model.Role, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Invalid("name is required")
	}
	if existing, err := s.roles.FindByName(ctx, in.Name); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("role name already in use")
	}

	r := &model.Role{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		IsDefault:   in.IsDefault,
	}
	if err := s.roles.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns the role or a not-found error.
func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	r, err := s.roles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("role not found")
	}
	return r, nil
}

// List returns one page of roles visible in the current scope.
func (s *RoleService) List(ctx context.Context, offset, limit int) ([]model.Role, int64, error) {
	return s.roles.Page(ctx, offset, limit, nil)
}

// UpdateRoleInput carries the mutable role fields.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	IsDefault   *bool
}

func (s *RoleService) Update(ctx context.Context, id uuid.UUID, in UpdateRoleInput) (*model.Role, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("name is required")
		}
		if name != r.Name {
			if existing, err := s.roles.FindByName(ctx, name); err != nil {
				return nil, err
			} else if existing != nil && existing.ID != r.ID {
				return nil, apperr.Conflict("role name already in use")
			}
			r.Name = name
		}
	}
	if in.Description != nil {
		r.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsDefault != nil {
		r.IsDefault = *in.IsDefault
	}
	if err := s.roles.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete soft-deletes the role and destroys its grants atomically with it.
func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.roles.Get(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return nil
	}
	if err := s.grants.DeleteWhere(ctx, "role_id = ?", id); err != nil {
		return err
	}
	return s.roles.DeleteByID(ctx, id)
}

// Grant links the permission to the role within the tenant context of the
// request. Granting an already-linked permission is a no-op.
func (s *RoleService) Grant(ctx context.Context, roleID, permissionID uuid.UUID) error {
	if _, err := s.Get(ctx, roleID); err != nil {
		return err
	}
	p, err := s.permissions.Get(ctx, permissionID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("permission not found")
	}

	sc, _ := tenant.FromContext(ctx)
	var tid *uuid.UUID
	if !sc.IsHost() {
		t := sc.Tenant()
		tid = &t
	}

	// The existence check carries the tenant component: a tenant-bound
	// grant and a global one are distinct rows under the composite key.
	var existing *model.RolePermission
	if tid == nil {
		existing, err = s.grants.First(ctx, "role_id = ? AND permission_id = ? AND tenant_id IS NULL", roleID, permissionID)
	} else {
		existing, err = s.grants.First(ctx, "role_id = ? AND permission_id = ? AND tenant_id = ?", roleID, permissionID, *tid)
	}
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.grants.Create(ctx, &model.RolePermission{RoleID: roleID, PermissionID: permissionID, TenantID: tid})
}

// Revoke destroys the grant; revoking an absent grant is a no-op.
func (s *RoleService) Revoke(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return s.grants.DeleteWhere(ctx, "role_id = ? AND permission_id = ?", roleID, permissionID)
}

// Grants lists the role's permission links.
func (s *RoleService) Grants(ctx context.Context, roleID uuid.UUID) ([]model.RolePermission, error) {
	if _, err := s.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return s.grants.List(ctx, "role_id = ?", roleID)
}
