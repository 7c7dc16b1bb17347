package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"adminportal/internal/apperr"
	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// In-memory fakes over the narrow store interfaces.

type fakeUserStore struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*model.User{}}
}

func (f *fakeUserStore) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) Page(ctx context.Context, offset, limit int, query any, args ...any) ([]model.User, int64, error) {
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserStore) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) Update(ctx context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

// fakeGrants mimics the tenant-context join semantics of the real store:
// rows with a nil tenant apply everywhere, rows bound to a tenant only
// apply within it, and the empty-uuid context admits only global rows.
type fakeGrants struct {
	assignments []model.UserRole
	grants      []grantRow
	err         error
}

type grantRow struct {
	roleID   uuid.UUID
	tenantID *uuid.UUID
	code     string
}

func matches(rowTenant *uuid.UUID, ctxTenant uuid.UUID) bool {
	if rowTenant == nil {
		return true
	}
	return ctxTenant != uuid.Nil && *rowTenant == ctxTenant
}

func (f *fakeGrants) RoleIDsForUser(ctx context.Context, userID, tenantID uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []uuid.UUID
	for _, a := range f.assignments {
		if a.UserID == userID && matches(a.TenantID, tenantID) {
			out = append(out, a.RoleID)
		}
	}
	return out, nil
}

func (f *fakeGrants) RolesGrantPermission(ctx context.Context, roleIDs []uuid.UUID, tenantID uuid.UUID, code string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, g := range f.grants {
		if g.code != code || !matches(g.tenantID, tenantID) {
			continue
		}
		for _, id := range roleIDs {
			if id == g.roleID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeGrants) PermissionCodesForUser(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	roleIDs, err := f.RoleIDsForUser(ctx, userID, tenantID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, g := range f.grants {
		if !matches(g.tenantID, tenantID) || seen[g.code] {
			continue
		}
		for _, id := range roleIDs {
			if id == g.roleID {
				seen[g.code] = true
				out = append(out, g.code)
				break
			}
		}
	}
	return out, nil
}

type fakeUserRoles struct {
	rows []model.UserRole
}

func (f *fakeUserRoles) First(ctx context.Context, query any, args ...any) (*model.UserRole, error) {
	// the service queries by (user_id, role_id, tenant); two args means the
	// tenant predicate is IS NULL
	userID, roleID := args[0].(uuid.UUID), args[1].(uuid.UUID)
	for i := range f.rows {
		r := &f.rows[i]
		if r.UserID != userID || r.RoleID != roleID {
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

func (f *fakeUserRoles) Create(ctx context.Context, ur *model.UserRole) error {
	f.rows = append(f.rows, *ur)
	return nil
}

func (f *fakeUserRoles) DeleteWhere(ctx context.Context, query any, args ...any) error {
	userID, roleID := args[0].(uuid.UUID), args[1].(uuid.UUID)
	kept := f.rows[:0]
	for _, r := range f.rows {
		if !(r.UserID == userID && r.RoleID == roleID) {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

type fakeTenantLookup struct {
	tenants map[uuid.UUID]*model.Tenant
}

func (f *fakeTenantLookup) Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	return f.tenants[id], nil
}

func newUserService(users *fakeUserStore, grants *fakeGrants, links *fakeUserRoles, tenants *fakeTenantLookup) *UserService {
	if users == nil {
		users = newFakeUserStore()
	}
	if grants == nil {
		grants = &fakeGrants{}
	}
	if links == nil {
		links = &fakeUserRoles{}
	}
	if tenants == nil {
		tenants = &fakeTenantLookup{tenants: map[uuid.UUID]*model.Tenant{}}
	}
	return NewUserService(users, grants, links, tenants)
}

func TestCreateUserValidation(t *testing.T) {
	svc := newUserService(nil, nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateUserInput
	}{
		{"missing email", CreateUserInput{Username: "bob", Password: "longenough"}},
		{"bad email", CreateUserInput{Email: "nope", Username: "bob", Password: "longenough"}},
		{"missing username", CreateUserInput{Email: "b@x.io", Password: "longenough"}},
		{"short password", CreateUserInput{Email: "b@x.io", Username: "bob", Password: "short"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.in); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	svc := newUserService(users, nil, nil, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateUserInput{Email: "a@x.io", Username: "alice", Password: "longenough"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.Create(ctx, CreateUserInput{Email: "A@X.IO", Username: "alice2", Password: "longenough"})
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Status != 409 {
		t.Fatalf("duplicate email err = %v, want 409 conflict", err)
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := newUserService(users, nil, nil, nil)

	u, err := svc.Create(context.Background(), CreateUserInput{Email: "a@x.io", Username: "alice", Password: "longenough"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.PasswordHash == "longenough" || !strings.HasPrefix(u.PasswordHash, "$2") {
		t.Fatalf("password stored without bcrypt hash: %q", u.PasswordHash)
	}
}

func TestAuthenticate(t *testing.T) {
	users := newFakeUserStore()
	tenants := &fakeTenantLookup{tenants: map[uuid.UUID]*model.Tenant{}}
	svc := newUserService(users, nil, nil, tenants)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	tenantID := uuid.New()
	tenants.tenants[tenantID] = &model.Tenant{ID: tenantID, Status: model.TenantActive}
	user := &model.User{
		ID:           uuid.New(),
		Email:        "a@x.io",
		Username:     "alice",
		PasswordHash: string(hash),
		Status:       model.UserActive,
	}
	user.TenantID = &tenantID
	users.users[user.ID] = user

	if _, err := svc.Authenticate(ctx, "a@x.io", "correcthorse"); err != nil {
		t.Fatalf("valid login: %v", err)
	}

	// unknown user and wrong password produce the same message
	_, errUnknown := svc.Authenticate(ctx, "nobody@x.io", "whatever")
	_, errWrong := svc.Authenticate(ctx, "a@x.io", "wrong")
	if errUnknown == nil || errWrong == nil || errUnknown.Error() != errWrong.Error() {
		t.Fatalf("credential errors differ: %v vs %v", errUnknown, errWrong)
	}

	// inactive tenant blocks login
	tenants.tenants[tenantID].Status = model.TenantSuspended
	if _, err := svc.Authenticate(ctx, "a@x.io", "correcthorse"); err == nil {
		t.Fatal("suspended tenant should block login")
	}
	tenants.tenants[tenantID].Status = model.TenantActive

	// locked user blocks login
	user.Status = model.UserLocked
	if _, err := svc.Authenticate(ctx, "a@x.io", "correcthorse"); err == nil {
		t.Fatal("locked user should block login")
	}
}

func TestHasPermissionGrantAndDeny(t *testing.T) {
	tenantA, tenantB := uuid.New(), uuid.New()
	userID, roleID := uuid.New(), uuid.New()

	grants := &fakeGrants{
		assignments: []model.UserRole{{UserID: userID, RoleID: roleID, TenantID: &tenantA}},
		grants:      []grantRow{{roleID: roleID, tenantID: &tenantA, code: "USER_READ"}},
	}
	svc := newUserService(nil, grants, nil, nil)
	ctx := context.Background()

	granted, err := svc.HasPermission(ctx, userID, tenantA, "USER_READ")
	if err != nil || !granted {
		t.Fatalf("grant in own tenant = (%v, %v), want (true, nil)", granted, err)
	}

	// same user and code, different tenant context
	granted, err = svc.HasPermission(ctx, userID, tenantB, "USER_READ")
	if err != nil || granted {
		t.Fatalf("grant leaked across tenants = (%v, %v), want (false, nil)", granted, err)
	}

	// ungranted code
	granted, _ = svc.HasPermission(ctx, userID, tenantA, "USER_DELETE")
	if granted {
		t.Fatal("ungranted code should deny")
	}
}

func TestHasPermissionGlobalAssignments(t *testing.T) {
	tenantA := uuid.New()
	userID, roleID := uuid.New(), uuid.New()

	// global role, global grant: valid in every tenant and at host level
	grants := &fakeGrants{
		assignments: []model.UserRole{{UserID: userID, RoleID: roleID, TenantID: nil}},
		grants:      []grantRow{{roleID: roleID, tenantID: nil, code: "TENANT_CREATE"}},
	}
	svc := newUserService(nil, grants, nil, nil)
	ctx := context.Background()

	for _, tid := range []uuid.UUID{tenantA, uuid.Nil} {
		granted, err := svc.HasPermission(ctx, userID, tid, "TENANT_CREATE")
		if err != nil || !granted {
			t.Fatalf("global grant in tenant %v = (%v, %v), want (true, nil)", tid, granted, err)
		}
	}
}

func TestHasPermissionDegenerateInputs(t *testing.T) {
	svc := newUserService(nil, nil, nil, nil)
	ctx := context.Background()

	if granted, err := svc.HasPermission(ctx, uuid.Nil, uuid.New(), "USER_READ"); granted || err != nil {
		t.Fatal("nil user should deny without error")
	}
	if granted, err := svc.HasPermission(ctx, uuid.New(), uuid.New(), ""); granted || err != nil {
		t.Fatal("empty code should deny without error")
	}
}

func TestHasPermissionPropagatesStoreError(t *testing.T) {
	grants := &fakeGrants{err: errors.New("db down")}
	svc := newUserService(nil, grants, nil, nil)

	granted, err := svc.HasPermission(context.Background(), uuid.New(), uuid.New(), "USER_READ")
	if granted {
		t.Fatal("errored check must not grant")
	}
	if err == nil {
		t.Fatal("store error should surface to the caller")
	}
}

func TestAssignRoleBindsTenantFromScope(t *testing.T) {
	users := newFakeUserStore()
	links := &fakeUserRoles{}
	svc := newUserService(users, nil, links, nil)

	user := &model.User{ID: uuid.New(), Email: "a@x.io", Username: "alice", Status: model.UserActive}
	users.users[user.ID] = user
	roleID := uuid.New()
	tenantID := uuid.New()

	ctx := tenant.NewContext(context.Background(), tenant.ForTenant(tenantID, "acme"))
	if err := svc.AssignRole(ctx, user.ID, roleID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(links.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(links.rows))
	}
	if links.rows[0].TenantID == nil || *links.rows[0].TenantID != tenantID {
		t.Fatalf("assignment tenant = %v, want %v", links.rows[0].TenantID, tenantID)
	}

	// repeat assignment is a no-op
	if err := svc.AssignRole(ctx, user.ID, roleID); err != nil {
		t.Fatalf("repeat assign: %v", err)
	}
	if len(links.rows) != 1 {
		t.Fatalf("repeat assignment duplicated the row: %d", len(links.rows))
	}

	// host scope yields a global assignment
	hostCtx := tenant.NewContext(context.Background(), tenant.HostScope())
	otherRole := uuid.New()
	if err := svc.AssignRole(hostCtx, user.ID, otherRole); err != nil {
		t.Fatalf("host assign: %v", err)
	}
	if links.rows[1].TenantID != nil {
		t.Fatalf("host assignment tenant = %v, want nil", links.rows[1].TenantID)
	}
}

// A tenant-bound assignment and a global one for the same (user, role) pair
// are distinct rows: the existing tenant row must not swallow a host-scope
// assignment, and the global row stays unique on repeat.
func TestAssignRolePerTenantRows(t *testing.T) {
	users := newFakeUserStore()
	links := &fakeUserRoles{}
	svc := newUserService(users, nil, links, nil)

	user := &model.User{ID: uuid.New(), Email: "a@x.io", Username: "alice", Status: model.UserActive}
	users.users[user.ID] = user
	roleID := uuid.New()

	tenantCtx := tenant.NewContext(context.Background(), tenant.ForTenant(uuid.New(), "acme"))
	if err := svc.AssignRole(tenantCtx, user.ID, roleID); err != nil {
		t.Fatalf("tenant assign: %v", err)
	}

	hostCtx := tenant.NewContext(context.Background(), tenant.HostScope())
	if err := svc.AssignRole(hostCtx, user.ID, roleID); err != nil {
		t.Fatalf("host assign: %v", err)
	}
	if len(links.rows) != 2 {
		t.Fatalf("rows = %d, want distinct tenant and global assignments", len(links.rows))
	}
	if links.rows[1].TenantID != nil {
		t.Fatalf("second assignment tenant = %v, want nil", links.rows[1].TenantID)
	}

	if err := svc.AssignRole(hostCtx, user.ID, roleID); err != nil {
		t.Fatalf("repeat host assign: %v", err)
	}
	if len(links.rows) != 2 {
		t.Fatalf("repeat host assignment duplicated the row: %d", len(links.rows))
	}
}
