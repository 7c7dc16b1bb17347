package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"adminportal/internal/tenant"

	"github.com/labstack/echo/v4"
)

func TestSubdomain(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"acme.example.com", "acme"},
		{"acme.example.com:8080", "acme"},
		{"ACME.example.com", "acme"},
		{"sgs.example.com", "sgs"},
		{"acme.localhost:3000", "acme"},
		{"localhost", ""},
		{"localhost:8080", ""},
		{".example.com", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Subdomain(tc.host); got != tc.want {
			t.Errorf("Subdomain(%q) = %q, want %q", tc.host, got, tc.want)
		}
	}
}

// Health and metrics must answer no matter what Host header a probe sends.
// The nil tenant service proves resolution never runs on these paths.
func TestTenantResolverBypassesProbes(t *testing.T) {
	e := echo.New()
	e.Use(TenantResolver(nil, "sgs"))
	var sawHost bool
	e.GET("/health", func(c echo.Context) error {
		sc, ok := tenant.FromContext(c.Request().Context())
		sawHost = ok && sc.IsHost()
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Host = "unknown-tenant.example.com"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s under unknown subdomain = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
	if !sawHost {
		t.Error("probe request did not carry a host scope")
	}
}
