// internal/app/system/auth/auth.go
//
// Package auth reads the acting student from a signed session cookie. The
// cookie is issued by the console front end that shares the session key;
// this service only verifies it.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	DefaultSessionName = "projecthub-session"

	isAuthKey = "is_authenticated"
	userIDKey = "user_id"
	userName  = "user_name"
	userEmail = "user_email"
	userRole  = "user_role"
)

// Roles carried in the session.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// ErrShortKey is returned for session keys under 32 bytes.
var ErrShortKey = errors.New("session key must be at least 32 characters")

// SessionUser is what we cache in the session & inject into r.Context().
type SessionUser struct {
	ID    string // directory student id
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether the user may act on groups they are not in.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, RoleAdmin)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager wraps a gorilla cookie store.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. With secure=true cookies are
// Secure and SameSite=None; local development over http uses Lax.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if len(sessionKey) < 32 {
		return nil, ErrShortKey
	}
	if name == "" {
		name = DefaultSessionName
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts
	store.MaxAge(opts.MaxAge)

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// LoadSessionUser injects the user into context if the cookie is valid.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.store.Get(r, sm.name)
		if err != nil {
			sm.log.Debug("session cookie rejected", zap.Error(err))
		}
		if sess != nil {
			if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
				u := &SessionUser{
					ID:    getString(sess, userIDKey),
					Name:  getString(sess, userName),
					Email: getString(sess, userEmail),
					Role:  getString(sess, userRole),
				}
				if u.ID != "" {
					r = withUser(r, u)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn answers 401 when no user is in context.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"ok":false,"kind":"Unauthorized","message":"Sign in to continue."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole answers 401 without a user and 403 when the user holds none
// of roles.
func (sm *SessionManager) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, _ := CurrentUser(r)
			for _, role := range roles {
				if strings.EqualFold(u.Role, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"ok":false,"kind":"Forbidden","message":"You do not have access to this page."}`))
		}))
	}
}

// SignIn writes u into the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userName] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[userRole] = u.Role
	return sess.Save(r, w)
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// WithTestUser injects u directly, bypassing the cookie. For handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
