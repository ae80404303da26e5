package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mkrukov/shade/app/store"
)

// visitorCookie identifies an anonymous visitor across page loads.
const visitorCookie = "shade-visitor"

// visitorID returns the visitor id from the cookie, minting and setting a
// new one when the cookie is missing or not a valid uuid.
func (s *Server) visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil {
		if id, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     s.cookiePath(),
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// visitorStore returns the preference store scoped to the current visitor.
func (s *Server) visitorStore(w http.ResponseWriter, r *http.Request) *store.Scoped {
	return store.NewScoped(s.prefs, s.visitorID(w, r))
}
