package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func requestWithRole(e *echo.Echo, role string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), UserRoleKey, role)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole_Allowed(t *testing.T) {
	e := echo.New()
	c, rec := requestWithRole(e, RoleDoctor)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := RequireRole(RoleAdmin, RoleDoctor)
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	e := echo.New()
	c, _ := requestWithRole(e, RolePatient)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := RequireRole(RoleAdmin, RoleDoctor)
	h := mw(handler)
	err := h(c)

	if err == nil {
		t.Error("expected error for unauthorized role")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_NoImplicitAdmin(t *testing.T) {
	// Dispensing is pharmacist work; an admin token must not pass a check
	// that does not list Admin.
	e := echo.New()
	c, _ := requestWithRole(e, RoleAdmin)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := RequireRole(RolePharmacist)
	h := mw(handler)
	err := h(c)

	if err == nil {
		t.Error("expected 403 for admin on a pharmacist-only route")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestRequireRole_MissingRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := RequireRole(RoleAdmin)
	h := mw(handler)
	err := h(c)

	if err == nil {
		t.Error("expected error when no role is on the context")
	}
}

func TestValidRoles(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleDoctor, RolePatient, RolePharmacist, RoleReceptionist} {
		if !ValidRoles[role] {
			t.Errorf("expected %s to be a valid registration role", role)
		}
	}
	if ValidRoles[RoleNurse] {
		t.Error("nurse has no registration path and must not be creatable")
	}
	if ValidRoles["Superuser"] {
		t.Error("unknown role must not validate")
	}
}
