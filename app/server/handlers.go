package server

import (
	"errors"
	"io/fs"
	"net/http"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"

	"github.com/mkrukov/shade/app/site"
	"github.com/mkrukov/shade/app/store"
	"github.com/mkrukov/shade/app/theme"
)

// handlePage serves the static site. HTML pages get the visitor's theme
// classes applied on the way out, everything else is served as-is.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	rel, isHTML, err := s.site.Resolve(r.URL.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		log.Printf("[WARN] can't resolve %s: %v", r.URL.Path, err)
		http.NotFound(w, r)
		return
	}

	if !isHTML {
		http.ServeFile(w, r, s.site.FilePath(rel))
		return
	}

	raw, err := s.site.Page(rel)
	if err != nil {
		log.Printf("[ERROR] failed to load page %s: %v", rel, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	rw, err := site.NewRewriter(raw)
	if err != nil {
		// unparseable page, serve untouched rather than fail
		log.Printf("[WARN] can't parse page %s: %v", rel, err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(raw)
		return
	}

	ctrl := theme.New(s.visitorStore(w, r), rw)
	ctrl.Init(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rw.Render(w); err != nil {
		log.Printf("[WARN] failed to render page %s: %v", rel, err)
	}
}

// handleThemeToggle flips the visitor's theme and persists the new value.
// The response never depends on the write outcome.
func (s *Server) handleThemeToggle(w http.ResponseWriter, r *http.Request) {
	ctrl := theme.New(s.visitorStore(w, r), nil)
	ctrl.Init(r.Context())
	newTheme := ctrl.Toggle(r.Context())

	// plain form posts go back to the referring page, fetch callers get json
	w.Header().Set("HX-Refresh", "true")
	if ref := r.Header.Get("Referer"); ref != "" {
		http.Redirect(w, r, ref, http.StatusSeeOther)
		return
	}
	rest.RenderJSON(w, rest.JSON{"theme": newTheme.String()})
}

// handlePrefsList returns all stored preference records.
func (s *Server) handlePrefsList(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.prefs.List(r.Context())
	if err != nil {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusInternalServerError, err, "failed to list preferences")
		return
	}
	rest.RenderJSON(w, prefs)
}

// handlePrefDelete removes a single preference record by its full key.
func (s *Server) handlePrefDelete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		rest.SendErrorJSON(w, r, log.Default(), http.StatusBadRequest, nil, "key is required")
		return
	}

	if err := s.prefs.Delete(r.Context(), key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rest.SendErrorJSON(w, r, log.Default(), http.StatusNotFound, err, "key not found")
			return
		}
		rest.SendErrorJSON(w, r, log.Default(), http.StatusInternalServerError, err, "failed to delete key")
		return
	}
	rest.RenderJSON(w, rest.JSON{"deleted": key})
}
