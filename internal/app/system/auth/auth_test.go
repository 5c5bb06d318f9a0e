package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func TestNewSessionManager_ShortKey(t *testing.T) {
	_, err := auth.NewSessionManager("short", "", "", time.Hour, false, nil)
	if !errors.Is(err, auth.ErrShortKey) {
		t.Errorf("err = %v, want ErrShortKey", err)
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	called := false
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/groups/x", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if called {
		t.Error("protected handler ran without a user")
	}
}

func TestRequireSignedIn_WithUser_Proceeds(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := auth.WithTestUser(httptest.NewRequest("GET", "/groups/x", nil), &auth.SessionUser{ID: "s1", Role: auth.RoleStudent})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		user *auth.SessionUser
		want int
	}{
		{"no user", nil, http.StatusUnauthorized},
		{"student", &auth.SessionUser{ID: "s1", Role: auth.RoleStudent}, http.StatusForbidden},
		{"admin", &auth.SessionUser{ID: "a1", Role: "Admin"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/audit", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestSignIn_RoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)

	signIn := httptest.NewRecorder()
	if err := sm.SignIn(signIn, httptest.NewRequest("POST", "/", nil), auth.SessionUser{
		ID:    "s1",
		Name:  "Ada Lovelace",
		Email: "ada@uni.edu",
		Role:  auth.RoleStudent,
	}); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := signIn.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie written")
	}

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("user not loaded from cookie")
	}
	if got.ID != "s1" || got.Email != "ada@uni.edu" || got.Role != auth.RoleStudent {
		t.Errorf("loaded user = %+v", got)
	}
}

func TestLoadSessionUser_TamperedCookieIgnored(t *testing.T) {
	sm := newTestSessionManager(t)

	var found bool
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentUser(r)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "forged-value"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if found {
		t.Error("forged cookie produced a user")
	}
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, httptest.NewRequest("POST", "/", nil)); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expired cookie, got %+v", cookies)
	}
}

func TestCurrentUser_NoUser(t *testing.T) {
	if _, ok := auth.CurrentUser(httptest.NewRequest("GET", "/", nil)); ok {
		t.Error("expected no user")
	}
}

func TestSessionUser_IsAdmin(t *testing.T) {
	tests := []struct {
		user *auth.SessionUser
		want bool
	}{
		{nil, false},
		{&auth.SessionUser{Role: auth.RoleStudent}, false},
		{&auth.SessionUser{Role: "ADMIN"}, true},
	}
	for _, tt := range tests {
		if got := tt.user.IsAdmin(); got != tt.want {
			t.Errorf("IsAdmin(%+v) = %v, want %v", tt.user, got, tt.want)
		}
	}
}
