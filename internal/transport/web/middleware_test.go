package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/DanielPodolsky/YelpCamp/internal/domain"
)

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireLogin(func(c echo.Context) error {
		t.Fatalf("handler must not run for anonymous users")
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("RequireLogin returned error: %v", err)
	}

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}

	// The original destination and the sign-in notice travel via cookies.
	next := carryCookies(t, rec, http.MethodGet, "/login")
	if got := PopReturnTo(next); got != "/campgrounds/new" {
		t.Fatalf("expected return target remembered, got %q", got)
	}
	flashes := PopFlashes(next)
	if len(flashes) != 1 || flashes[0].Message != "You must be signed in first!" {
		t.Fatalf("expected sign-in flash, got %+v", flashes)
	}
}

func TestRequireLoginPassesAuthenticated(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(contextUserKey, &domain.User{Username: "colt"})

	ran := false
	handler := RequireLogin(func(c echo.Context) error {
		ran = true
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("RequireLogin returned error: %v", err)
	}
	if !ran {
		t.Fatalf("expected handler to run for authenticated user")
	}
}

func TestCurrentUserAbsent(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if _, ok := CurrentUser(c); ok {
		t.Fatalf("expected no current user")
	}
}

func TestMethodOverride(t *testing.T) {
	cases := []struct {
		field string
		want  string
	}{
		{"DELETE", http.MethodDelete},
		{"PUT", http.MethodPut},
		{"PATCH", http.MethodPost}, // unsupported values are ignored
		{"", http.MethodPost},
	}
	for _, tc := range cases {
		form := url.Values{}
		if tc.field != "" {
			form.Set("_method", tc.field)
		}
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/campgrounds/abc", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		c := e.NewContext(req, httptest.NewRecorder())

		handler := MethodOverride(func(c echo.Context) error { return nil })
		if err := handler(c); err != nil {
			t.Fatalf("MethodOverride returned error: %v", err)
		}
		if got := c.Request().Method; got != tc.want {
			t.Fatalf("_method=%q: expected %s, got %s", tc.field, tc.want, got)
		}
	}
}

func TestMethodOverrideLeavesGetAlone(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/campgrounds?_method=DELETE", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := MethodOverride(func(c echo.Context) error { return nil })
	if err := handler(c); err != nil {
		t.Fatalf("MethodOverride returned error: %v", err)
	}
	if got := c.Request().Method; got != http.MethodGet {
		t.Fatalf("expected GET untouched, got %s", got)
	}
}
