package service

import (
	"context"
	"strings"

	"adminportal/internal/apperr"
	"adminportal/internal/model"

	"github.com/google/uuid"
)

// CountryStore manages the shared country table.
type CountryStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Country, error)
	First(ctx context.Context, query any, args ...any) (*model.Country, error)
	List(ctx context.Context, query any, args ...any) ([]model.Country, error)
	Create(ctx context.Context, c *model.Country) error
	Update(ctx context.Context, c *model.Country) error
}

// StateStore manages the shared state table.
type StateStore interface {
	Get(ctx context.Context, id uuid.UUID) (*model.State, error)
	List(ctx context.Context, query any, args ...any) ([]model.State, error)
	Create(ctx context.Context, s *model.State) error
	Update(ctx context.Context, s *model.State) error
}

// LocationOption is the (id, name) pair returned to dropdowns.
type LocationOption struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LocationService serves the reference geography used by address forms.
type LocationService struct {
	countries CountryStore
	states    StateStore
}

func NewLocationService(countries CountryStore, states StateStore) *LocationService {
	return &LocationService{countries: countries, states: states}
}

// ListActiveCountries returns (id, name) pairs for every active country.
func (s *LocationService) ListActiveCountries(ctx context.Context) ([]LocationOption, error) {
	countries, err := s.countries.List(ctx, "active = ?", true)
	if err != nil {
		return nil, err
	}
	options := make([]LocationOption, 0, len(countries))
	for _, c := range countries {
		options = append(options, LocationOption{ID: c.ID, Name: c.Name})
	}
	return options, nil
}

// ListStatesForCountry returns (id, name) pairs for the country's active
// states.
func (s *LocationService) ListStatesForCountry(ctx context.Context, countryID uuid.UUID) ([]LocationOption, error) {
	country, err := s.countries.Get(ctx, countryID)
	if err != nil {
		return nil, err
	}
	if country == nil {
		return nil, apperr.NotFound("country not found")
	}
	states, err := s.states.List(ctx, "country_id = ? AND active = ?", countryID, true)
	if err != nil {
		return nil, err
	}
	options := make([]LocationOption, 0, len(states))
	for _, st := range states {
		options = append(options, LocationOption{ID: st.ID, Name: st.Name})
	}
	return options, nil
}

// CreateCountry adds a reference country (host-only route).
func (s *LocationService) CreateCountry(ctx context.Context, name, iso2 string) (*model.Country, error) {
	name = strings.TrimSpace(name)
	iso2 = strings.ToUpper(strings.TrimSpace(iso2))
	if name == "" || len(iso2) != 2 {
		return nil, apperr.Invalid("name and a two-letter ISO code are required")
	}
	if existing, err := s.countries.First(ctx, "name = ? OR iso2 = ?", name, iso2); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("country already exists")
	}
	c := &model.Country{Name: name, ISO2: iso2, Active: true}
	if err := s.countries.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CreateState adds a reference state under a country (host-only route).
func (s *LocationService) CreateState(ctx context.Context, countryID uuid.UUID, name, code string) (*model.State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Invalid("name is required")
	}
	country, err := s.countries.Get(ctx, countryID)
	if err != nil {
		return nil, err
	}
	if country == nil {
		return nil, apperr.NotFound("country not found")
	}
	st := &model.State{Name: name, Code: strings.ToUpper(strings.TrimSpace(code)), CountryID: countryID, Active: true}
	if err := s.states.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SetCountryActive toggles a country's availability.
func (s *LocationService) SetCountryActive(ctx context.Context, id uuid.UUID, active bool) error {
	c, err := s.countries.Get(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.NotFound("country not found")
	}
	c.Active = active
	return s.countries.Update(ctx, c)
}

// SetStateActive toggles a state's availability.
func (s *LocationService) SetStateActive(ctx context.Context, id uuid.UUID, active bool) error {
	st, err := s.states.Get(ctx, id)
	if err != nil {
		return err
	}
	if st == nil {
		return apperr.NotFound("state not found")
	}
	st.Active = active
	return s.states.Update(ctx, st)
}
