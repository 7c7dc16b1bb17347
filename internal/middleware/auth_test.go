package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"adminportal/internal/tenant"
	"adminportal/pkg/config"
	"adminportal/pkg/jwtutil"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func authSetup() *jwtutil.JWTUtil {
	return jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
}

func runAuth(t *testing.T, j *jwtutil.JWTUtil, header string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var inner echo.Context
	h := AuthMiddleware(j)(func(c echo.Context) error {
		inner = c
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, inner
}

func TestAuthMiddlewareBindsScopeAndPrincipal(t *testing.T) {
	j := authSetup()
	userID, tenantID := uuid.New(), uuid.New()

	token, err := j.GenerateToken(userID, "a@x.io", &tenantID, "acme", "Admin", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	rec, inner := runAuth(t, j, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	ctx := inner.Request().Context()
	sc, ok := tenant.FromContext(ctx)
	if !ok || sc.Tenant() != tenantID || sc.Slug != "acme" {
		t.Fatalf("scope not bound from claims: %+v ok=%v", sc, ok)
	}
	p, ok := tenant.PrincipalFromContext(ctx)
	if !ok || p.UserID != userID || p.Email != "a@x.io" {
		t.Fatalf("principal not bound from claims: %+v ok=%v", p, ok)
	}
}

func TestAuthMiddlewareHostToken(t *testing.T) {
	j := authSetup()
	token, err := j.GenerateToken(uuid.New(), "root@x.io", nil, "", "Host Administrator", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	rec, inner := runAuth(t, j, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	sc, _ := tenant.FromContext(inner.Request().Context())
	if !sc.IsHost() {
		t.Fatalf("nil tenant claim should yield host scope: %+v", sc)
	}
}

func TestAuthMiddlewareRejections(t *testing.T) {
	j := authSetup()
	other := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "wrong-key", ExpirationHours: 1})
	forged, _ := other.GenerateToken(uuid.New(), "a@x.io", nil, "", "", nil)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed", "Bearer"},
		{"garbage token", "Bearer not.a.token"},
		{"wrong key", "Bearer " + forged},
	}
	for _, tc := range cases {
		rec, _ := runAuth(t, j, tc.header)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", tc.name, rec.Code)
		}
	}
}
