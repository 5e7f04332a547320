package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/assignportal/internal/app/system/auth"
	"github.com/dalemusser/assignportal/internal/app/system/tokens"
	"go.uber.org/zap"
)

type fakeRoles map[string]string

func (f fakeRoles) RoleOf(_ context.Context, username string) (string, bool, error) {
	role, ok := f[username]
	return role, ok, nil
}

type failingRoles struct{}

func (failingRoles) RoleOf(context.Context, string) (string, bool, error) {
	return "", false, errors.New("db down")
}

func newTestGuard(t *testing.T, roles auth.RoleResolver) (*auth.Guard, *tokens.Issuer) {
	t.Helper()
	iss := tokens.NewIssuer("test-secret", "assignportal-test")
	return auth.NewGuard(iss, roles, zap.NewNop()), iss
}

func issue(t *testing.T, iss *tokens.Issuer, username string) string {
	t.Helper()
	tok, _, err := iss.Issue(username)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	return tok
}

func okHandler(seen **auth.SessionUser) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := auth.CurrentUser(r); ok {
			*seen = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireRole_Admin(t *testing.T) {
	g, iss := newTestGuard(t, fakeRoles{"bob": "admin", "alice": "user"})
	ctx := context.Background()

	identity, err := g.RequireRole(ctx, issue(t, iss, "bob"), "admin")
	if err != nil {
		t.Fatalf("RequireRole failed: %v", err)
	}
	if identity != "bob" {
		t.Errorf("identity: got %q, want %q", identity, "bob")
	}

	if _, err := g.RequireRole(ctx, issue(t, iss, "alice"), "admin"); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("expected ErrForbidden for user role, got %v", err)
	}
	if _, err := g.RequireRole(ctx, issue(t, iss, "deleted"), "admin"); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("expected ErrForbidden for unknown user, got %v", err)
	}
	if _, err := g.RequireRole(ctx, "", "admin"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for empty token, got %v", err)
	}
	if _, err := g.RequireRole(ctx, "garbage", "admin"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for garbage token, got %v", err)
	}
}

func TestSignedIn_NoHeader_Returns401(t *testing.T) {
	g, _ := newTestGuard(t, fakeRoles{})
	var seen *auth.SessionUser

	req := httptest.NewRequest("POST", "/upload", nil)
	rec := httptest.NewRecorder()
	g.SignedIn(okHandler(&seen)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if seen != nil {
		t.Error("handler should not run without a token")
	}
}

func TestSignedIn_ValidToken_SetsUser(t *testing.T) {
	g, iss := newTestGuard(t, fakeRoles{})
	var seen *auth.SessionUser

	req := httptest.NewRequest("POST", "/upload", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, iss, "alice"))
	rec := httptest.NewRecorder()
	g.SignedIn(okHandler(&seen)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if seen == nil || seen.Username != "alice" {
		t.Errorf("expected alice in context, got %+v", seen)
	}
}

func TestRequire_WrongRole_Returns403(t *testing.T) {
	g, iss := newTestGuard(t, fakeRoles{"alice": "user"})
	var seen *auth.SessionUser

	req := httptest.NewRequest("GET", "/assignments", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, iss, "alice"))
	rec := httptest.NewRecorder()
	g.Require("admin")(okHandler(&seen)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if seen != nil {
		t.Error("handler should not run for wrong role")
	}
}

func TestRequire_BadToken_Returns401(t *testing.T) {
	g, _ := newTestGuard(t, fakeRoles{"bob": "admin"})
	other := tokens.NewIssuer("another-secret", "assignportal-test")
	var seen *auth.SessionUser

	req := httptest.NewRequest("GET", "/assignments", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, other, "bob"))
	rec := httptest.NewRecorder()
	g.Require("admin")(okHandler(&seen)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequire_CorrectRole_Proceeds(t *testing.T) {
	g, iss := newTestGuard(t, fakeRoles{"bob": "admin"})
	var seen *auth.SessionUser

	req := httptest.NewRequest("GET", "/assignments", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, iss, "bob"))
	rec := httptest.NewRecorder()
	g.Require("admin")(okHandler(&seen)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if seen == nil || seen.Username != "bob" || seen.Role != "admin" {
		t.Errorf("unexpected user in context: %+v", seen)
	}
}

func TestRequire_RoleLookupFails_Returns500(t *testing.T) {
	g, iss := newTestGuard(t, failingRoles{})
	var seen *auth.SessionUser

	req := httptest.NewRequest("GET", "/assignments", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, iss, "bob"))
	rec := httptest.NewRecorder()
	g.Require("admin")(okHandler(&seen)).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"  Bearer   abc  ", "abc"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := auth.BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := auth.CurrentUser(req); ok {
		t.Error("expected no user in context")
	}
}

func TestCurrentUser_FromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.SessionUser{Username: "bob", Role: "admin"}))
	u, ok := auth.CurrentUser(req)
	if !ok || u.Username != "bob" {
		t.Errorf("expected bob in context, got %+v", u)
	}
}
