package handler

import (
	"net/http"
	"time"

	"adminportal/internal/pagination"
	"adminportal/internal/service"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RoleHandler serves role and grant administration.
type RoleHandler struct {
	roles *service.RoleService
}

func NewRoleHandler(roles *service.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// Create handles role creation
func (h *RoleHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordRoleOperation("create")

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsDefault   bool   `json:"is_default"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	r, err := h.roles.Create(c.Request().Context(), service.CreateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		return err
	}

	log.Info("Role created",
		zap.String("name", r.Name),
		zap.String("id", r.ID.String()))

	return c.JSON(http.StatusCreated, echo.Map{"message": "role created", "role": r})
}

// Get retrieves one role
func (h *RoleHandler) Get(c echo.Context) error {
	prometheus.RecordRoleOperation("access")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	r, err := h.roles.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// List returns one page of roles
func (h *RoleHandler) List(c echo.Context) error {
	prometheus.RecordRoleOperation("list")
	p := pagination.FromRequest(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	roles, total, err := h.roles.List(c.Request().Context(), p.Offset(), p.PerPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewPaged(roles, total, p))
}

// Update mutates role fields
func (h *RoleHandler) Update(c echo.Context) error {
	prometheus.RecordRoleOperation("update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsDefault   *bool   `json:"is_default"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	r, err := h.roles.Update(c.Request().Context(), id, service.UpdateRoleInput{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

// Delete removes a role and its grants
func (h *RoleHandler) Delete(c echo.Context) error {
	prometheus.RecordRoleOperation("delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.roles.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role deleted"})
}

// Grant links a permission to the role within the caller's tenant
func (h *RoleHandler) Grant(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordRoleOperation("grant")

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}
	permID, err := uuid.Parse(c.Param("permissionId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission ID"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := h.roles.Grant(c.Request().Context(), roleID, permID); err != nil {
		return err
	}

	log.Info("Permission granted",
		zap.String("role_id", roleID.String()),
		zap.String("permission_id", permID.String()))

	return c.JSON(http.StatusOK, echo.Map{"message": "permission granted"})
}

// Revoke unlinks a permission from the role
func (h *RoleHandler) Revoke(c echo.Context) error {
	prometheus.RecordRoleOperation("revoke")

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}
	permID, err := uuid.Parse(c.Param("permissionId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid permission ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.roles.Revoke(c.Request().Context(), roleID, permID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "permission revoked"})
}

// Grants lists the permission grants attached to a role
func (h *RoleHandler) Grants(c echo.Context) error {
	prometheus.RecordRoleOperation("grants")

	roleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	grants, err := h.roles.Grants(c.Request().Context(), roleID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"role_id": roleID, "grants": grants})
}
