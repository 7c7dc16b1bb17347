package service

import (
	"context"
	"strings"

	"adminportal/internal/apperr"
	"adminportal/internal/model"

	"github.com/google/uuid"
)

// AddressStore is the persistence surface the address service needs.
type AddressStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Address, error)
	Page(ctx context.Context, offset, limit int, query any, args ...any) ([]model.Address, int64, error)
	Create(ctx context.Context, a *model.Address) error
	Update(ctx context.Context, a *model.Address) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// AddressService implements tenant-owned address book entries with
// referential checks against the shared geography.
type AddressService struct {
	addresses AddressStore
	countries CountryStore
	states    StateStore
}

func NewAddressService(addresses AddressStore, countries CountryStore, states StateStore) *AddressService {
	return &AddressService{addresses: addresses, countries: countries, states: states}
}

// AddressInput carries the fields accepted on create and update.
type AddressInput struct {
	Line1     string
	Line2     string
	City      string
	ZipCode   string
	CountryID uuid.UUID
	StateID   uuid.UUID
}

func (s *AddressService) validate(ctx context.Context, in AddressInput) error {
	if strings.TrimSpace(in.Line1) == "" {
		return apperr.Invalid("line1 is required")
	}
	if strings.TrimSpace(in.City) == "" {
		return apperr.Invalid("city is required")
	}
	country, err := s.countries.Get(ctx, in.CountryID)
	if err != nil {
		return err
	}
	if country == nil || !country.Active {
		return apperr.Invalid("unknown or inactive country")
	}
	state, err := s.states.Get(ctx, in.StateID)
	if err != nil {
		return err
	}
	if state == nil || state.CountryID != in.CountryID {
		return apperr.Invalid("state does not belong to the country")
	}
	return nil
}

func (s *AddressService) Create(ctx context.Context, in AddressInput) (*model.Address, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	a := &model.Address{
		Line1:     strings.TrimSpace(in.Line1),
		Line2:     strings.TrimSpace(in.Line2),
		City:      strings.TrimSpace(in.City),
		ZipCode:   strings.TrimSpace(in.ZipCode),
		CountryID: in.CountryID,
		StateID:   in.StateID,
	}
	if err := s.addresses.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Get(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	a, err := s.addresses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("address not found")
	}
	return a, nil
}

// List returns one page of the tenant's addresses.
func (s *AddressService) List(ctx context.Context, offset, limit int) ([]model.Address, int64, error) {
	return s.addresses.Page(ctx, offset, limit, nil)
}

func (s *AddressService) Update(ctx context.Context, id uuid.UUID, in AddressInput) (*model.Address, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}
	a.Line1 = strings.TrimSpace(in.Line1)
	a.Line2 = strings.TrimSpace(in.Line2)
	a.City = strings.TrimSpace(in.City)
	a.ZipCode = strings.TrimSpace(in.ZipCode)
	a.CountryID = in.CountryID
	a.StateID = in.StateID
	if err := s.addresses.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete soft-deletes the address; a missing id is a no-op.
func (s *AddressService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.addresses.DeleteByID(ctx, id)
}
