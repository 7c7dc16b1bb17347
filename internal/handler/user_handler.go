package handler

import (
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

// UserHandler serves user administration within the caller's tenant.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Create handles user creation
func (h *UserHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordUserOperation("create")

	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	user, err := h.users.Create(c.Request().Context(), service.CreateUserInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	log.Info("User created",
		zap.String("email", user.Email),
		zap.String("id", user.ID.String()))

	return c.JSON(http.StatusCreated, echo.Map{"message": "user created", "user": user})
}

// Get retrieves one user
func (h *UserHandler) Get(c echo.Context) error {
	prometheus.RecordUserOperation("access")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	user, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// List returns one page of users visible to the caller's tenant
func (h *UserHandler) List(c echo.Context) error {
	prometheus.RecordUserOperation("list")
	p := pagination.FromRequest(c)

	defer prometheus.TrackDBOperation("query")(time.Now())

	users, total, err := h.users.List(c.Request().Context(), p.Offset(), p.PerPage)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewPaged(users, total, p))
}

// Update mutates profile fields
func (h *UserHandler) Update(c echo.Context) error {
	prometheus.RecordUserOperation("update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var req struct {
		FirstName *string           `json:"first_name"`
		LastName  *string           `json:"last_name"`
		Status    *model.UserStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	user, err := h.users.Update(c.Request().Context(), id, service.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Status:    req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ChangePassword verifies the current credential before replacing it
func (h *UserHandler) ChangePassword(c echo.Context) error {
	prometheus.RecordUserOperation("change_password")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.users.ChangePassword(c.Request().Context(), id, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

// Delete soft-deletes a user
func (h *UserHandler) Delete(c echo.Context) error {
	prometheus.RecordUserOperation("delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

// AssignRole links a role to a user within the caller's tenant
func (h *UserHandler) AssignRole(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordUserOperation("assign_role")

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}
	roleID, err := uuid.Parse(c.Param("roleId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := h.users.AssignRole(c.Request().Context(), userID, roleID); err != nil {
		return err
	}

	log.Info("Role assigned",
		zap.String("user_id", userID.String()),
		zap.String("role_id", roleID.String()))

	return c.JSON(http.StatusOK, echo.Map{"message": "role assigned"})
}

// RemoveRole unlinks a role from a user
func (h *UserHandler) RemoveRole(c echo.Context) error {
	prometheus.RecordUserOperation("remove_role")

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}
	roleID, err := uuid.Parse(c.Param("roleId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role ID"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.users.RemoveRole(c.Request().Context(), userID, roleID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role removed"})
}

// Permissions returns the caller-visible permission codes for a user
func (h *UserHandler) Permissions(c echo.Context) error {
	prometheus.RecordUserOperation("permissions")

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	sc := scopeFrom(c)
	codes, err := h.users.PermissionCodes(c.Request().Context(), userID, sc.Tenant())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"user_id": userID, "permissions": codes})
}
