package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/expenses", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ReaderForbiddenExpenseCreate(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, RoleReader)
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/expenses", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ReaderForbiddenAuditList(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, RoleReader)
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_SessionCookieAccepted(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, RoleReader)
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	var gotUser string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/expenses.xlsx", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotUser != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", gotUser)
	}
}

func TestAuthMiddleware_SuperadminAllowed(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, RoleSuperadmin)
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
}

func TestPolicy_LoginExempt(t *testing.T) {
	policy := NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	if _, ok := policy.RequiredRole(req); ok {
		t.Fatal("login must not require a role")
	}
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	if !policy.IsExempt(req) {
		t.Fatal("healthz must be exempt")
	}
}

func mustToken(t *testing.T, secret []byte, role Role) string {
	t.Helper()
	signed, err := IssueToken(secret, "user-1", "user@example.com", role, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
