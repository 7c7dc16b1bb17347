package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"adminportal/internal/apperr"
	"adminportal/internal/audit"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// brokenRecorder returns a recorder whose writes can never succeed, to show
// that a failing audit write leaves the computed response intact.
func brokenRecorder(t *testing.T) *audit.Recorder {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("dummy gorm: %v", err)
	}
	return audit.NewRecorder(db)
}

func runErrorHandler(t *testing.T, development bool, handlerErr error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := ErrorHandler(brokenRecorder(t), development)(func(c echo.Context) error {
		return handlerErr
	})
	if err := h(c); err != nil {
		t.Fatalf("error handler leaked error: %v", err)
	}
	return rec
}

func TestErrorHandlerMapsDomainError(t *testing.T) {
	rec := runErrorHandler(t, false, apperr.NotFound("tenant not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["error"] != "tenant not found" {
		t.Fatalf("error = %v", body["error"])
	}
	if body["correlation_id"] == nil || body["correlation_id"] == "" {
		t.Fatal("response carries no correlation id")
	}
	if _, ok := body["detail"]; ok {
		t.Fatal("production response must not carry raw detail")
	}
}

func TestErrorHandlerSanitizesUnknownErrors(t *testing.T) {
	rec := runErrorHandler(t, false, errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if msg, _ := body["error"].(string); msg == "" || msg == "pq: password authentication failed" {
		t.Fatalf("internal detail leaked or missing message: %q", msg)
	}
}

func TestErrorHandlerDevelopmentDetail(t *testing.T) {
	rec := runErrorHandler(t, true, apperr.Invalid("bad slug"))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if body["detail"] != "bad slug" {
		t.Fatalf("development detail = %v", body["detail"])
	}
}

func TestErrorHandlerPassesEchoErrors(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	wanted := echo.NewHTTPError(http.StatusBadRequest, "bind failure")
	h := ErrorHandler(brokenRecorder(t), false)(func(c echo.Context) error {
		return wanted
	})
	err := h(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he != wanted {
		t.Fatalf("echo error not passed through: %v", err)
	}
}

func TestErrorHandlerNoErrorPassthrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := ErrorHandler(brokenRecorder(t), false)(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
