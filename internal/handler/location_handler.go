package handler

import (
	"net/http"
	"time"

	"adminportal/internal/service"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LocationHandler serves the shared geography reference data.
type LocationHandler struct {
	locations *service.LocationService
}

func NewLocationHandler(locations *service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// Countries lists active countries as id/name options
func (h *LocationHandler) Countries(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	opts, err := h.locations.ListActiveCountries(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"countries": opts})
}

// States lists active states for one country
func (h *LocationHandler) States(c echo.Context) error {
	countryID, err := uuid.Parse(c.Param("countryId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid country ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	opts, err := h.locations.ListStatesForCountry(c.Request().Context(), countryID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"states": opts})
}

// CreateCountry adds a country to the shared catalog
func (h *LocationHandler) CreateCountry(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Name string `json:"name"`
		ISO2 string `json:"iso2"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	country, err := h.locations.CreateCountry(c.Request().Context(), req.Name, req.ISO2)
	if err != nil {
		return err
	}

	log.Info("Country created", zap.String("name", country.Name))

	return c.JSON(http.StatusCreated, country)
}

// CreateState adds a state under a country
func (h *LocationHandler) CreateState(c echo.Context) error {
	countryID, err := uuid.Parse(c.Param("countryId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid country ID"})
	}

	var req struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	state, err := h.locations.CreateState(c.Request().Context(), countryID, req.Name, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, state)
}

// SetCountryActive toggles a country in or out of the pick lists
func (h *LocationHandler) SetCountryActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid country ID"})
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.locations.SetCountryActive(c.Request().Context(), id, req.Active); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "country updated"})
}

// SetStateActive toggles a state in or out of the pick lists
func (h *LocationHandler) SetStateActive(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid state ID"})
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.locations.SetStateActive(c.Request().Context(), id, req.Active); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "state updated"})
}
