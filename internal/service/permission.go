package service

import (
	"context"
	"regexp"
	"strings"

	"adminportal/internal/apperr"
	"adminportal/internal/model"

	"github.com/google/uuid"
)

// PermissionStore is the persistence surface the permission service needs.
type PermissionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Permission, error)
	FindByCode(ctx context.Context, code string) (*model.Permission, error)
	List(ctx context.Context, query any, args ...any) ([]model.Permission, error)
	Create(ctx context.Context, p *model.Permission) error
	Update(ctx context.Context, p *model.Permission) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	InUse(ctx context.Context, permissionID uuid.UUID) (bool, error)
}

var codePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// PermissionService implements the permission catalog.
type PermissionService struct {
	permissions PermissionStore
}

func NewPermissionService(permissions PermissionStore) *PermissionService {
	return &PermissionService{permissions: permissions}
}

// CreatePermissionInput carries the fields accepted on permission creation.
type CreatePermissionInput struct {
	Code        string
	Description string
}

// Create validates the code shape and enforces global uniqueness.
func (s *PermissionService) Create(ctx context.Context, in CreatePermissionInput) (*model.Permission, error) {
	in.Code = strings.TrimSpace(in.Code)
	if !codePattern.MatchString(in.Code) {
		return nil, apperr.Invalid("code must be uppercase letters, digits and underscores")
	}
	if existing, err := s.permissions.FindByCode(ctx, in.Code); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("permission code already exists")
	}

	p := &model.Permission{Code: in.Code, Description: strings.TrimSpace(in.Description)}
	if err := s.permissions.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the permission or a not-found error.
func (s *PermissionService) Get(ctx context.Context, id uuid.UUID) (*model.Permission, error) {
	p, err := s.permissions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("permission not found")
	}
	return p, nil
}

// List returns the permissions visible in the current scope.
func (s *PermissionService) List(ctx context.Context) ([]model.Permission, error) {
	return s.permissions.List(ctx, nil)
}

// UpdateDescription is the only mutation; codes are immutable once referenced
// by route declarations.
func (s *PermissionService) UpdateDescription(ctx context.Context, id uuid.UUID, description string) (*model.Permission, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Description = strings.TrimSpace(description)
	if err := s.permissions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes an unreferenced permission; one still linked to a role is a
// conflict.
func (s *PermissionService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.permissions.Get(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}
	used, err := s.permissions.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return apperr.Conflict("permission is assigned to one or more roles")
	}
	return s.permissions.DeleteByID(ctx, id)
}
