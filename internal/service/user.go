// Package service holds the domain services: field validation, uniqueness
// rules and the authoritative permission check. Services talk to storage
// through narrow interfaces so tests drive them with in-memory fakes.
package service

import (
	"context"
	"strings"

	"adminportal/internal/apperr"
	"adminportal/internal/model"
	"adminportal/internal/tenant"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the persistence surface the user service needs.
type UserStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Page(ctx context.Context, offset, limit int, query any, args ...any) ([]model.User, int64, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// GrantStore resolves tenant-scoped role assignments and permission links.
type GrantStore interface {
	RoleIDsForUser(ctx context.Context, userID, tenantID uuid.UUID) ([]uuid.UUID, error)
	RolesGrantPermission(ctx context.Context, roleIDs []uuid.UUID, tenantID uuid.UUID, code string) (bool, error)
	PermissionCodesForUser(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
}

// UserRoleStore manages user/role join rows.
type UserRoleStore interface {
	First(ctx context.Context, query any, args ...any) (*model.UserRole, error)
	Create(ctx context.Context, ur *model.UserRole) error
	DeleteWhere(ctx context.Context, query any, args ...any) error
}

// TenantLookup is the slice of tenant access the user service needs to gate
// authentication on tenant status.
type TenantLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
}

// UserService implements user lifecycle and the permission check the
// authorization pipeline delegates to.
type UserService struct {
	users   UserStore
	grants  GrantStore
	links   UserRoleStore
	tenants TenantLookup
}

func NewUserService(users UserStore, grants GrantStore, links UserRoleStore, tenants TenantLookup) *UserService {
	return &UserService{users: users, grants: grants, links: links, tenants: tenants}
}

// CreateUserInput carries the fields accepted on registration/creation.
type CreateUserInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Create validates input, enforces email/username uniqueness and stores the
// bcrypt hash. The tenant reference is bound from the request scope by the
// repository.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)

	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperr.Invalid("a valid email is required")
	}
	if in.Username == "" {
		return nil, apperr.Invalid("username is required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Invalid("password must be at least 8 characters")
	}

	if existing, err := s.users.FindByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}
	if existing, err := s.users.FindByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &model.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Status:       model.UserActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and gates on both user and tenant
// status. It deliberately returns the same error for unknown user and wrong
// password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if user.Status != model.UserActive {
		return nil, apperr.Forbidden("account is not active")
	}
	if user.TenantID != nil {
		t, err := s.tenants.Get(ctx, *user.TenantID)
		if err != nil {
			return nil, err
		}
		if t == nil || t.Status != model.TenantActive {
			return nil, apperr.Forbidden("tenant is not active")
		}
	}
	return user, nil
}

// Get returns the user or a not-found error.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}

// List returns one page of users. The tenant query filter scopes the page
// to the caller's tenant.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	return s.users.Page(ctx, offset, limit, nil)
}

// UpdateProfileInput carries the mutable profile fields.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Status    *model.UserStatus
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Status != nil {
		switch *in.Status {
		case model.UserActive, model.UserInactive, model.UserLocked:
			user.Status = *in.Status
		default:
			return nil, apperr.Invalid("unknown user status")
		}
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the old credential before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperr.Unauthorized("current password is incorrect")
	}
	if len(newPassword) < 8 {
		return apperr.Invalid("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}

// Delete soft-deletes the user; a missing id is a no-op.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.DeleteByID(ctx, id)
}

// AssignRole creates the user/role join row for the tenant context of the
// request. Assigning an already-held role is a no-op.
func (s *UserService) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	sc, _ := tenant.FromContext(ctx)
	var tid *uuid.UUID
	if !sc.IsHost() {
		t := sc.Tenant()
		tid = &t
	}

	// The existence check carries the tenant component: a tenant-bound
	// assignment and a global one are distinct rows under the composite key.
	var existing *model.UserRole
	var err error
	if tid == nil {
		existing, err = s.links.First(ctx, "user_id = ? AND role_id = ? AND tenant_id IS NULL", userID, roleID)
	} else {
		existing, err = s.links.First(ctx, "user_id = ? AND role_id = ? AND tenant_id = ?", userID, roleID, *tid)
	}
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return s.links.Create(ctx, &model.UserRole{UserID: userID, RoleID: roleID, TenantID: tid})
}

// RemoveRole destroys the join row; removing an unassigned role is a no-op.
func (s *UserService) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return s.links.DeleteWhere(ctx, "user_id = ? AND role_id = ?", userID, roleID)
}

// HasPermission is the single authoritative capability check: true iff some
// role assigned to the user within the tenant context is linked, within the
// same tenant context, to the permission with the given code. Every failure
// to prove the grant is a plain false, never an error surfaced as success.
func (s *UserService) HasPermission(ctx context.Context, userID, tenantID uuid.UUID, code string) (bool, error) {
	if userID == uuid.Nil || code == "" {
		return false, nil
	}
	roleIDs, err := s.grants.RoleIDsForUser(ctx, userID, tenantID)
	if err != nil {
		return false, err
	}
	if len(roleIDs) == 0 {
		return false, nil
	}
	return s.grants.RolesGrantPermission(ctx, roleIDs, tenantID, code)
}

// PermissionCodes returns the codes embedded in issued tokens.
func (s *UserService) PermissionCodes(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	return s.grants.PermissionCodesForUser(ctx, userID, tenantID)
}
