package seed

import (
	"context"
	"fmt"

	"adminportal/internal/model"
	"adminportal/internal/repository"
	"adminportal/internal/tenant"
	"adminportal/pkg/config"
	"adminportal/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// hostAdminRole is the global role granted every permission in the catalog.
const hostAdminRole = "Host Administrator"

// permissionCatalog is the set of codes the route table refers to. Seeding
// is additive; codes created at runtime are left alone.
var permissionCatalog = []model.Permission{
	{Code: "TENANT_CREATE", Description: "Create tenants"},
	{Code: "TENANT_READ", Description: "View tenants"},
	{Code: "TENANT_UPDATE", Description: "Update tenants and their status"},
	{Code: "TENANT_DELETE", Description: "Delete tenants"},
	{Code: "USER_CREATE", Description: "Create users"},
	{Code: "USER_READ", Description: "View users"},
	{Code: "USER_UPDATE", Description: "Update users and their roles"},
	{Code: "USER_DELETE", Description: "Delete users"},
	{Code: "ROLE_CREATE", Description: "Create roles"},
	{Code: "ROLE_READ", Description: "View roles and their grants"},
	{Code: "ROLE_UPDATE", Description: "Update roles and manage grants"},
	{Code: "ROLE_DELETE", Description: "Delete roles"},
	{Code: "PERMISSION_CREATE", Description: "Register permission codes"},
	{Code: "PERMISSION_READ", Description: "View the permission catalog"},
	{Code: "PERMISSION_UPDATE", Description: "Update permission descriptions"},
	{Code: "PERMISSION_DELETE", Description: "Delete unused permissions"},
	{Code: "ADDRESS_CREATE", Description: "Create addresses"},
	{Code: "ADDRESS_READ", Description: "View addresses"},
	{Code: "ADDRESS_UPDATE", Description: "Update addresses"},
	{Code: "ADDRESS_DELETE", Description: "Delete addresses"},
	{Code: "LOCATION_MANAGE", Description: "Maintain the geography catalog"},
}

var referenceCountries = []struct {
	name   string
	iso2   string
	states []struct{ name, code string }
}{
	{
		name: "United States", iso2: "US",
		states: []struct{ name, code string }{
			{"California", "CA"}, {"New York", "NY"}, {"Texas", "TX"}, {"Washington", "WA"},
		},
	},
	{
		name: "Canada", iso2: "CA",
		states: []struct{ name, code string }{
			{"Ontario", "ON"}, {"Quebec", "QC"}, {"British Columbia", "BC"},
		},
	},
	{
		name: "Thailand", iso2: "TH",
		states: []struct{ name, code string }{
			{"Bangkok", "10"}, {"Chiang Mai", "50"}, {"Phuket", "83"},
		},
	},
}

// Run makes the database usable on first boot: the permission catalog, a
// global administrator role holding every grant, the bootstrap host admin
// account, and a minimal geography set. Every step is idempotent.
func Run(ctx context.Context, stores *repository.Stores, cfg config.SeedConfig) error {
	// seeding acts on host-level (NULL tenant) rows
	ctx = tenant.NewContext(ctx, tenant.HostScope())
	log := logger.GetLogger()

	perms, err := seedPermissions(ctx, stores)
	if err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}

	role, err := seedAdminRole(ctx, stores, perms)
	if err != nil {
		return fmt.Errorf("seed admin role: %w", err)
	}

	if err := seedAdminUser(ctx, stores, cfg, role, log); err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	if err := seedGeography(ctx, stores); err != nil {
		return fmt.Errorf("seed geography: %w", err)
	}

	log.Info("Seed completed")
	return nil
}

func seedPermissions(ctx context.Context, stores *repository.Stores) ([]model.Permission, error) {
	out := make([]model.Permission, 0, len(permissionCatalog))
	for _, p := range permissionCatalog {
		existing, err := stores.Permissions.FindByCode(ctx, p.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			out = append(out, *existing)
			continue
		}
		created := p
		if err := stores.Permissions.Create(ctx, &created); err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

func seedAdminRole(ctx context.Context, stores *repository.Stores, perms []model.Permission) (*model.Role, error) {
	role, err := stores.Roles.FindByName(ctx, hostAdminRole)
	if err != nil {
		return nil, err
	}
	if role == nil {
		role = &model.Role{
			Name:        hostAdminRole,
			Description: "Global role holding every permission",
		}
		if err := stores.Roles.Create(ctx, role); err != nil {
			return nil, err
		}
	}
	for _, p := range perms {
		exists, err := stores.RolePermissions.Any(ctx,
			"role_id = ? AND permission_id = ? AND tenant_id IS NULL", role.ID, p.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		grant := &model.RolePermission{RoleID: role.ID, PermissionID: p.ID}
		if err := stores.RolePermissions.Create(ctx, grant); err != nil {
			return nil, err
		}
	}
	return role, nil
}

func seedAdminUser(ctx context.Context, stores *repository.Stores, cfg config.SeedConfig, role *model.Role, log *zap.Logger) error {
	if cfg.AdminPassword == "" {
		log.Warn("SEED_ADMIN_PASSWORD not set, skipping host administrator bootstrap")
		return nil
	}

	user, err := stores.Users.FindByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return err
	}
	if user == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user = &model.User{
			Email:        cfg.AdminEmail,
			Username:     cfg.AdminUsername,
			PasswordHash: string(hash),
			Status:       model.UserActive,
		}
		if err := stores.Users.Create(ctx, user); err != nil {
			return err
		}
		log.Info("Host administrator created", zap.String("email", user.Email))
	}

	assigned, err := stores.UserRoles.Any(ctx,
		"user_id = ? AND role_id = ? AND tenant_id IS NULL", user.ID, role.ID)
	if err != nil {
		return err
	}
	if !assigned {
		link := &model.UserRole{UserID: user.ID, RoleID: role.ID}
		if err := stores.UserRoles.Create(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

func seedGeography(ctx context.Context, stores *repository.Stores) error {
	for _, c := range referenceCountries {
		country, err := stores.Countries.First(ctx, "iso2 = ?", c.iso2)
		if err != nil {
			return err
		}
		if country == nil {
			country = &model.Country{Name: c.name, ISO2: c.iso2, Active: true}
			if err := stores.Countries.Create(ctx, country); err != nil {
				return err
			}
		}
		for _, s := range c.states {
			exists, err := stores.States.Any(ctx, "country_id = ? AND name = ?", country.ID, s.name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			state := &model.State{Name: s.name, Code: s.code, CountryID: country.ID, Active: true}
			if err := stores.States.Create(ctx, state); err != nil {
				return err
			}
		}
	}
	return nil
}
