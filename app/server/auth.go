package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// adminCookie carries the admin session token.
const adminCookie = "shade-admin"

// Auth provides password-based admin sessions. Disabled entirely when no
// password hash is configured.
type Auth struct {
	passwordHash string
	ttl          time.Duration

	mu       sync.Mutex
	sessions map[string]time.Time // token -> expiry
}

// NewAuth creates admin auth from a bcrypt password hash. Empty hash
// disables the admin surface; a malformed hash is rejected up front.
func NewAuth(passwordHash string, ttl time.Duration) (*Auth, error) {
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Auth{passwordHash: passwordHash, ttl: ttl, sessions: map[string]time.Time{}}, nil
}

// Enabled reports whether admin auth is configured.
func (a *Auth) Enabled() bool { return a.passwordHash != "" }

// Login checks the password and creates a session, returning its token.
func (a *Auth) Login(password string) (string, bool) {
	if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)); err != nil {
		return "", false
	}
	token := uuid.NewString()
	a.mu.Lock()
	a.sessions[token] = time.Now().Add(a.ttl)
	a.mu.Unlock()
	return token, true
}

// Valid reports whether the token belongs to a live session.
func (a *Auth) Valid(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	expiry, ok := a.sessions[token]
	if !ok {
		return false
	}
	if time.Now().After(expiry) {
		delete(a.sessions, token)
		return false
	}
	return true
}

// Middleware rejects requests without a valid admin session cookie.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(adminCookie)
		if err != nil || !a.Valid(cookie.Value) {
			rest.SendErrorJSON(w, r, log.Default(), http.StatusUnauthorized, nil, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartCleanup prunes expired sessions periodically until ctx is canceled.
func (a *Auth) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.cleanup()
			}
		}
	}()
}

func (a *Auth) cleanup() {
	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for token, expiry := range a.sessions {
		if now.After(expiry) {
			delete(a.sessions, token)
		}
	}
}

// handleAdminLogin processes the admin login form and sets the session cookie.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, err, "invalid form data")
		return
	}

	token, ok := s.auth.Login(r.FormValue("password"))
	if !ok {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusUnauthorized, nil, "invalid password")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    token,
		Path:     s.cookiePath(),
		MaxAge:   int(s.auth.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
	})
	rest.RenderJSON(w, rest.JSON{"status": "ok"})
}
