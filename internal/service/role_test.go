package service

import (
	"context"
	"errors"
	"testing"

	"adminportal/internal/apperr"
	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
)

type fakeRoleStore struct {
	roles map[uuid.UUID]*model.Role
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{roles: map[uuid.UUID]*model.Role{}}
}

func (f *fakeRoleStore) Get(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	return f.roles[id], nil
}

func (f *fakeRoleStore) FindByName(ctx context.Context, name string) (*model.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoleStore) Page(ctx context.Context, offset, limit int, query any, args ...any) ([]model.Role, int64, error) {
	out := make([]model.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRoleStore) Create(ctx context.Context, r *model.Role) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.roles[r.ID] = r
	return nil
}

func (f *fakeRoleStore) Update(ctx context.Context, r *model.Role) error {
	f.roles[r.ID] = r
	return nil
}

func (f *fakeRoleStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	delete(f.roles, id)
	return nil
}

type fakeRolePermissions struct {
	rows []model.RolePermission
}

func (f *fakeRolePermissions) First(ctx context.Context, query any, args ...any) (*model.RolePermission, error) {
	// two args means the tenant predicate is IS NULL
	roleID, permID := args[0].(uuid.UUID), args[1].(uuid.UUID)
	for i := range f.rows {
		r := &f.rows[i]
		if r.RoleID != roleID || r.PermissionID != permID {
			continue
		}
		if len(args) == 2 {
			if r.TenantID == nil {
				return r, nil
			}
			continue
		}
		if r.TenantID != nil && *r.TenantID == args[2].(uuid.UUID) {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRolePermissions) List(ctx context.Context, query any, args ...any) ([]model.RolePermission, error) {
	roleID := args[0].(uuid.UUID)
	var out []model.RolePermission
	for _, r := range f.rows {
		if r.RoleID == roleID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRolePermissions) Create(ctx context.Context, rp *model.RolePermission) error {
	f.rows = append(f.rows, *rp)
	return nil
}

func (f *fakeRolePermissions) DeleteWhere(ctx context.Context, query any, args ...any) error {
	kept := f.rows[:0]
	switch len(args) {
	case 1:
		roleID := args[0].(uuid.UUID)
		for _, r := range f.rows {
			if r.RoleID != roleID {
				kept = append(kept, r)
			}
		}
	case 2:
		roleID, permID := args[0].(uuid.UUID), args[1].(uuid.UUID)
		for _, r := range f.rows {
			if !(r.RoleID == roleID && r.PermissionID == permID) {
				kept = append(kept, r)
			}
		}
	}
	f.rows = kept
	return nil
}

type fakePermissionLookup struct {
	perms map[uuid.UUID]*model.Permission
}

func (f *fakePermissionLookup) Get(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	return f.perms[id], nil
}

func roleFixture() (*RoleService, *fakeRoleStore, *fakeRolePermissions, *fakePermissionLookup) {
	roles := newFakeRoleStore()
	grants := &fakeRolePermissions{}
	perms := &fakePermissionLookup{perms: map[uuid.UUID]*model.Permission{}}
	return NewRoleService(roles, grants, perms), roles, grants, perms
}

func TestCreateRoleDuplicateName(t *testing.T) {
	svc, _, _, _ := roleFixture()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateRoleInput{Name: "Editor"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateRoleInput{Name: "Editor"})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Status != 409 {
		t.Fatalf("duplicate name err = %v, want 409", err)
	}
}

func TestGrantBindsTenantAndIsIdempotent(t *testing.T) {
	svc, _, grants, perms := roleFixture()

	role, err := svc.Create(context.Background(), CreateRoleInput{Name: "Editor"})
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	perm := &model.Permission{ID: uuid.New(), Code: "USER_READ"}
	perms.perms[perm.ID] = perm

	tenantID := uuid.New()
	ctx := tenant.NewContext(context.Background(), tenant.ForTenant(tenantID, "acme"))

	if err := svc.Grant(ctx, role.ID, perm.ID); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if len(grants.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(grants.rows))
	}
	if grants.rows[0].TenantID == nil || *grants.rows[0].TenantID != tenantID {
		t.Fatalf("grant tenant = %v, want %v", grants.rows[0].TenantID, tenantID)
	}

	if err := svc.Grant(ctx, role.ID, perm.ID); err != nil {
		t.Fatalf("repeat grant: %v", err)
	}
	if len(grants.rows) != 1 {
		t.Fatalf("repeat grant duplicated the row: %d", len(grants.rows))
	}
}

// A tenant-bound grant must not block creating the distinct global grant
// for the same (role, permission) pair under a host scope.
func TestGrantPerTenantRows(t *testing.T) {
	svc, _, grants, perms := roleFixture()

	role, err := svc.Create(context.Background(), CreateRoleInput{Name: "Editor"})
	if err != nil {
		t.Fatalf("create role: %v", err)
	}
	perm := &model.Permission{ID: uuid.New(), Code: "USER_READ"}
	perms.perms[perm.ID] = perm

	tenantCtx := tenant.NewContext(context.Background(), tenant.ForTenant(uuid.New(), "acme"))
	if err := svc.Grant(tenantCtx, role.ID, perm.ID); err != nil {
		t.Fatalf("tenant grant: %v", err)
	}

	hostCtx := tenant.NewContext(context.Background(), tenant.HostScope())
	if err := svc.Grant(hostCtx, role.ID, perm.ID); err != nil {
		t.Fatalf("host grant: %v", err)
	}
	if len(grants.rows) != 2 {
		t.Fatalf("rows = %d, want distinct tenant and global grants", len(grants.rows))
	}
	if grants.rows[1].TenantID != nil {
		t.Fatalf("second grant tenant = %v, want nil", grants.rows[1].TenantID)
	}

	if err := svc.Grant(hostCtx, role.ID, perm.ID); err != nil {
		t.Fatalf("repeat host grant: %v", err)
	}
	if len(grants.rows) != 2 {
		t.Fatalf("repeat host grant duplicated the row: %d", len(grants.rows))
	}
}

func TestGrantUnknownPermission(t *testing.T) {
	svc, _, _, _ := roleFixture()
	role, _ := svc.Create(context.Background(), CreateRoleInput{Name: "Editor"})

	err := svc.Grant(context.Background(), role.ID, uuid.New())
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Status != 404 {
		t.Fatalf("unknown permission err = %v, want 404", err)
	}
}

func TestRevokeAbsentGrantIsNoop(t *testing.T) {
	svc, _, _, _ := roleFixture()
	role, _ := svc.Create(context.Background(), CreateRoleInput{Name: "Editor"})

	if err := svc.Revoke(context.Background(), role.ID, uuid.New()); err != nil {
		t.Fatalf("revoke absent grant: %v", err)
	}
}

func TestDeleteRoleRemovesGrants(t *testing.T) {
	svc, roles, grants, perms := roleFixture()
	ctx := context.Background()

	role, _ := svc.Create(ctx, CreateRoleInput{Name: "Editor"})
	perm := &model.Permission{ID: uuid.New(), Code: "USER_READ"}
	perms.perms[perm.ID] = perm
	if err := svc.Grant(ctx, role.ID, perm.ID); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := svc.Delete(ctx, role.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(grants.rows) != 0 {
		t.Fatal("grants should be destroyed with the role")
	}
	if _, ok := roles.roles[role.ID]; ok {
		t.Fatal("role should be gone")
	}

	// deleting again is a no-op
	if err := svc.Delete(ctx, role.ID); err != nil {
		t.Fatalf("repeated delete: %v", err)
	}
}
