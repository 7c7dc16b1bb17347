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

// PermissionHandler serves the permission catalog.
type PermissionHandler struct {
	permissions *service.PermissionService
}

func NewPermissionHandler(permissions *service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissions: permissions}
}

// Create registers a new permission code
func (h *PermissionHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	p, err := h.permissions.Create(c.Request().Context(), service.CreatePermissionInput{
		Code:        req.Code,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	log.Info("Permission created", zap.String("code", p.Code))

	return c.JSON(http.StatusCreated, echo.Map{"message": "permission created", "permission": p})
}

// Get retrieves one permission
func (h *PermissionHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	p, err := h.permissions.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// List returns the full catalog. The catalog is small and consumed whole
// by the admin UI, so it is not paginated.
func (h *PermissionHandler) List(c echo.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	perms, err := h.permissions.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"permissions": perms})
}

// Update replaces the description; codes are immutable once referenced
func (h *PermissionHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission ID"})
	}

	var req struct {
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	p, err := h.permissions.UpdateDescription(c.Request().Context(), id, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes an unreferenced permission
func (h *PermissionHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.permissions.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "permission deleted"})
}
