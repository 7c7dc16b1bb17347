package handler

import (
	"net/http"
	"time"

	"adminportal/internal/model"
	"adminportal/internal/service"
	"adminportal/pkg/jwtutil"
	"adminportal/pkg/logger"
	"adminportal/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler serves login and registration.
type AuthHandler struct {
	users   *service.UserService
	tenants *service.TenantService
	jwt     *jwtutil.JWTUtil
}

func NewAuthHandler(users *service.UserService, tenants *service.TenantService, jwt *jwtutil.JWTUtil) *AuthHandler {
	return &AuthHandler{users: users, tenants: tenants, jwt: jwt}
}

// Login authenticates credentials within the resolved tenant context and
// issues a token embedding user, tenant, role and permission claims.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	ctx := c.Request().Context()
	defer prometheus.TrackDBOperation("query")(time.Now())

	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		prometheus.RecordAuthError("login_failure")
		return err
	}

	// the token's tenant claim mirrors the user's home tenant; host
	// accounts get a host-level token with no tenant restriction
	var tenantID *uuid.UUID
	var tenantSlug string
	tokenTenant := uuid.Nil
	if user.TenantID != nil {
		t, err := h.tenants.Get(ctx, *user.TenantID)
		if err != nil {
			return err
		}
		tenantID = user.TenantID
		tenantSlug = t.Slug
		tokenTenant = t.ID
	}

	role := roleClaim(user)
	permissions, err := h.users.PermissionCodes(ctx, user.ID, tokenTenant)
	if err != nil {
		return err
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email, tenantID, tenantSlug, role, permissions)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}
	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_slug", tenantSlug))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":        user.ID,
			"email":     user.Email,
			"username":  user.Username,
			"tenant_id": user.TenantID,
		},
	})
}

// Register creates an account within the resolved tenant context.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
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
		prometheus.RecordAuthError("registration_failed")
		return err
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.String("user_id", user.ID.String()))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"user": echo.Map{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// roleClaim picks the role name carried in the token, preferring the
// assignment matching the user's home tenant and falling back to a global
// assignment.
func roleClaim(user *model.User) string {
	for _, ur := range user.Roles {
		if sameTenant(ur.TenantID, user.TenantID) && ur.Role.Name != "" {
			return ur.Role.Name
		}
	}
	for _, ur := range user.Roles {
		if ur.TenantID == nil && ur.Role.Name != "" {
			return ur.Role.Name
		}
	}
	return ""
}

func sameTenant(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
