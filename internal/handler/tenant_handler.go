package handler

import (
	"io"
	"net/http"
	"time"

	"adminportal/internal/model"
	"adminportal/internal/pagination"
	"adminportal/internal/service"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler serves tenant administration.
type TenantHandler struct {
	tenants *service.TenantService
}

func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Create handles tenant creation
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("create")

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	t, err := h.tenants.Create(c.Request().Context(), service.CreateTenantInput{Name: req.Name, Slug: req.Slug})
	if err != nil {
		return err
	}

	log.Info("Tenant created",
		zap.String("name", t.Name),
		zap.String("slug", t.Slug),
		zap.String("id", t.ID.String()))

	return c.JSON(http.StatusCreated, echo.Map{"message": "tenant created", "tenant": t})
}

// Get retrieves tenant details
func (h *TenantHandler) Get(c echo.Context) error {
	prometheus.RecordTenantOperation("access")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	t, err := h.tenants.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// List returns one page of tenants
func (h *TenantHandler) List(c echo.Context) error {
	prometheus.RecordTenantOperation("list")
	p := pagination.FromRequest(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	tenants, total, err := h.tenants.List(c.Request().Context(), p.Offset(), p.PerPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewPaged(tenants, total, p))
}

// Update mutates tenant fields
func (h *TenantHandler) Update(c echo.Context) error {
	prometheus.RecordTenantOperation("update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var req struct {
		Name *string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	t, err := h.tenants.Update(c.Request().Context(), id, service.UpdateTenantInput{Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// SetStatus toggles the tenant lifecycle status
func (h *TenantHandler) SetStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("set_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	var req struct {
		Status model.TenantStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	t, err := h.tenants.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}

	log.Info("Tenant status changed",
		zap.String("id", t.ID.String()),
		zap.String("status", string(t.Status)))

	return c.JSON(http.StatusOK, t)
}

// Delete soft-deletes the tenant
func (h *TenantHandler) Delete(c echo.Context) error {
	prometheus.RecordTenantOperation("delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.tenants.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tenant deleted"})
}

// UploadLogo stores a logo file for the tenant
func (h *TenantHandler) UploadLogo(c echo.Context) error {
	prometheus.RecordTenantOperation("upload_logo")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant ID"})
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "logo file is required"})
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unable to read logo file"})
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unable to read logo file"})
	}

	t, err := h.tenants.UploadLogo(c.Request().Context(), id, data, file.Filename)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logo uploaded", "logo_path": t.LogoPath})
}
