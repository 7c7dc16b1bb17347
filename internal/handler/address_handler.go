package handler

import (
	"net/http"
	"time"

	"adminportal/internal/pagination"
	"adminportal/internal/service"
	"adminportal/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AddressHandler serves tenant-owned address book entries.
type AddressHandler struct {
	addresses *service.AddressService
}

func NewAddressHandler(addresses *service.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

func bindAddress(c echo.Context) (service.AddressInput, bool) {
	var req struct {
		Line1     string    `json:"line1"`
		Line2     string    `json:"line2"`
		City      string    `json:"city"`
		ZipCode   string    `json:"zip_code"`
		CountryID uuid.UUID `json:"country_id"`
		StateID   uuid.UUID `json:"state_id"`
	}
	if err := c.Bind(&req); err != nil {
		return service.AddressInput{}, false
	}
	return service.AddressInput{
		Line1:     req.Line1,
		Line2:     req.Line2,
		City:      req.City,
		ZipCode:   req.ZipCode,
		CountryID: req.CountryID,
		StateID:   req.StateID,
	}, true
}

// Create stores a new address for the caller's tenant
func (h *AddressHandler) Create(c echo.Context) error {
	in, ok := bindAddress(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	a, err := h.addresses.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// Get retrieves one address
func (h *AddressHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	a, err := h.addresses.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// List returns one page of addresses visible to the caller's tenant
func (h *AddressHandler) List(c echo.Context) error {
	p := pagination.FromRequest(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	addresses, total, err := h.addresses.List(c.Request().Context(), p.Offset(), p.PerPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewPaged(addresses, total, p))
}

// Update replaces the address fields after revalidation
func (h *AddressHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address ID"})
	}

	in, ok := bindAddress(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	a, err := h.addresses.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Delete soft-deletes an address
func (h *AddressHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid address ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.addresses.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "address deleted"})
}
