package service

import (
	"context"
	"regexp"
	"strings"

	"adminportal/internal/apperr"
	"adminportal/internal/model"
	"adminportal/internal/storage"

	"github.com/google/uuid"
)

// TenantStore is the persistence surface the tenant service needs.
type TenantStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	FindActiveBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	Page(ctx context.Context, offset, limit int, query any, args ...any) ([]model.Tenant, int64, error)
	Create(ctx context.Context, t *model.Tenant) error
	Update(ctx context.Context, t *model.Tenant) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// TenantService implements tenant lifecycle and the slug resolution used by
// the tenant resolver middleware.
type TenantService struct {
	tenants      TenantStore
	files        storage.FileStore
	reservedSlug string
}

func NewTenantService(tenants TenantStore, files storage.FileStore, reservedSlug string) *TenantService {
	return &TenantService{tenants: tenants, files: files, reservedSlug: reservedSlug}
}

// CreateTenantInput carries the fields accepted on tenant creation.
type CreateTenantInput struct {
	Name string
	Slug string
}

// Create validates name and slug, rejects the reserved host slug and
// enforces global slug uniqueness. New tenants start pending.
func (s *TenantService) Create(ctx context.Context, in CreateTenantInput) (*model.Tenant, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))

	if in.Name == "" {
		return nil, apperr.Invalid("name is required")
	}
	if !slugPattern.MatchString(in.Slug) || len(in.Slug) > 63 {
		return nil, apperr.Invalid("slug must be lowercase letters, digits and hyphens")
	}
	if in.Slug == s.reservedSlug {
		return nil, apperr.Invalid("slug is reserved")
	}
	if existing, err := s.tenants.FindBySlug(ctx, in.Slug); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("slug already in use")
	}

	t := &model.Tenant{
		Name:   in.Name,
		Slug:   in.Slug,
		Status: model.TenantPending,
	}
	if err := s.tenants.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns the tenant or a not-found error.
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	t, err := s.tenants.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("tenant not found")
	}
	return t, nil
}

// ResolveActiveSlug returns the active tenant for a subdomain slug; a miss
// is the terminal 404 of tenant resolution.
func (s *TenantService) ResolveActiveSlug(ctx context.Context, slug string) (*model.Tenant, error) {
	t, err := s.tenants.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("tenant not found")
	}
	return t, nil
}

// List returns one page of tenants.
func (s *TenantService) List(ctx context.Context, offset, limit int) ([]model.Tenant, int64, error) {
	return s.tenants.Page(ctx, offset, limit, nil)
}

// UpdateTenantInput carries the mutable tenant fields.
type UpdateTenantInput struct {
	Name *string
}

func (s *TenantService) Update(ctx context.Context, id uuid.UUID, in UpdateTenantInput) (*model.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Invalid("name is required")
		}
		t.Name = name
	}
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// SetStatus toggles the tenant lifecycle status; tenants are never
// physically removed in the normal flow.
func (s *TenantService) SetStatus(ctx context.Context, id uuid.UUID, status model.TenantStatus) (*model.Tenant, error) {
	switch status {
	case model.TenantActive, model.TenantInactive, model.TenantPending, model.TenantSuspended:
	default:
		return nil, apperr.Invalid("unknown tenant status")
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = status
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete soft-deletes the tenant; a missing id is a no-op.
func (s *TenantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tenants.DeleteByID(ctx, id)
}

// UploadLogo stores the logo bytes and records the relative path.
func (s *TenantService) UploadLogo(ctx context.Context, id uuid.UUID, data []byte, filename string) (*model.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	path, err := s.files.Save(data, filename)
	if err != nil {
		return nil, apperr.Internal("failed to store logo", err)
	}
	if t.LogoPath != "" {
		s.files.Delete(t.LogoPath)
	}
	t.LogoPath = path
	if err := s.tenants.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
