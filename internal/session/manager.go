package session

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/ispconsole/backoffice/internal/pkg/errors"
	"github.com/ispconsole/backoffice/internal/pkg/logger"
	"github.com/ispconsole/backoffice/internal/pkg/rbac"
	"github.com/ispconsole/backoffice/internal/port"
)

// CookieName is the session cookie.
const CookieName = "bo_session"

// localToken marks a session issued by the bootstrap fallback. Calls
// to the remote API with this session go out anonymous.
const localToken = "local"

type claimsKey struct{}

// WithClaims stores the verified session claims in ctx.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the session claims, ok=false when unauthenticated.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// Manager exchanges credentials for sessions and guards routes.
type Manager struct {
	backend port.Backend
	secret  string
	maxAge  time.Duration

	// Bootstrap admin, usable when the remote auth host is down.
	bootstrapUser string
	bootstrapHash string
}

func NewManager(backend port.Backend, secret string, maxAge time.Duration, bootstrapUser, bootstrapHash string) *Manager {
	return &Manager{
		backend:       backend,
		secret:        secret,
		maxAge:        maxAge,
		bootstrapUser: bootstrapUser,
		bootstrapHash: bootstrapHash,
	}
}

// Login proxies credentials to the remote API and wraps the returned
// bearer token in a signed cookie value. When the remote call fails at
// the transport level (not a refusal) and the bootstrap admin is
// configured, bcrypt-checked local credentials still get in.
func (m *Manager) Login(ctx context.Context, username, password, host string) (string, error) {
	id, err := m.backend.Login(ctx, username, password, host)
	if err != nil {
		var envErr *port.EnvelopeError
		if stderrors.As(err, &envErr) {
			// The API understood and said no. Wrong credentials.
			return "", apperrors.Unauthorized(envErr.Message)
		}
		if cookie, ok := m.tryBootstrap(ctx, username, password); ok {
			return cookie, nil
		}
		return "", err
	}

	return Sign(m.secret, Claims{
		Username:  username,
		Role:      resolveRole(ctx, id.Role),
		Token:     id.Token,
		ExpiresAt: time.Now().Add(m.maxAge).Unix(),
	})
}

// resolveRole maps the remote account's role onto the local policy. A
// role the policy does not know gets the least-privileged one; an
// unrecognized role must never widen access.
func resolveRole(ctx context.Context, remote string) string {
	role := strings.ToLower(remote)
	if _, ok := rbac.Roles[role]; ok {
		return role
	}
	logger.From(ctx).Warn("unknown role from login, demoting", "role", remote)
	return "operator"
}

func (m *Manager) tryBootstrap(ctx context.Context, username, password string) (string, bool) {
	if m.bootstrapUser == "" || m.bootstrapHash == "" || username != m.bootstrapUser {
		return "", false
	}
	if bcrypt.CompareHashAndPassword([]byte(m.bootstrapHash), []byte(password)) != nil {
		return "", false
	}
	logger.From(ctx).Warn("remote auth unreachable, bootstrap admin signed in",
		"username", username)
	cookie, err := Sign(m.secret, Claims{
		Username:  username,
		Role:      "admin",
		Token:     localToken,
		ExpiresAt: time.Now().Add(m.maxAge).Unix(),
	})
	if err != nil {
		return "", false
	}
	return cookie, true
}

// SetCookie writes the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Verify resolves the request's session claims.
func (m *Manager) Verify(r *http.Request) (Claims, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Claims{}, apperrors.Unauthorized("no session")
	}
	claims, err := Verify(m.secret, cookie.Value)
	if err != nil {
		return Claims{}, apperrors.Unauthorized(err.Error())
	}
	return claims, nil
}

// Middleware guards authenticated routes. An unauthenticated browser
// request is redirected to /login; an API request gets a 401 envelope
// the frontend turns into a redirect. An authenticated visit to /login
// bounces to /dashboard.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.Verify(r)
		authed := err == nil

		if r.URL.Path == "/login" {
			if authed {
				http.Redirect(w, r, "/dashboard", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if !authed {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"success":false,"message":"Unauthorized"}`))
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := WithClaims(r.Context(), claims)
		if claims.Token != localToken {
			ctx = WithToken(ctx, claims.Token)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
