// Package server provides the HTTP server fronting the static site and
// owning the theme-preference endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/routegroup"

	"github.com/mkrukov/shade/app/store"
)

// Prefs defines the interface for preference storage operations.
// Defined here (consumer side) to allow different store implementations.
type Prefs interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]store.PrefInfo, error)
}

// SiteService defines the interface for static site access.
type SiteService interface {
	Resolve(urlPath string) (rel string, isHTML bool, err error)
	Page(rel string) ([]byte, error)
	FilePath(rel string) string
}

// Config holds server configuration.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Version         string
	BaseURL         string // base URL path for reverse proxy (e.g., /blog)

	AdminPasswordHash string        // bcrypt hash for admin password (empty = admin disabled)
	LoginTTL          time.Duration // admin session duration

	// limits
	BodySizeLimit  int64 // max request body size in bytes
	RequestsPerSec int64 // max requests per second
}

// Server represents the HTTP server.
type Server struct {
	prefs   Prefs
	site    SiteService
	cfg     Config
	auth    *Auth
	baseURL string
}

// New creates a new Server instance.
func New(prefs Prefs, siteSvc SiteService, cfg Config) (*Server, error) {
	auth, err := NewAuth(cfg.AdminPasswordHash, cfg.LoginTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize admin auth: %w", err)
	}

	return &Server{
		prefs:   prefs,
		site:    siteSvc,
		cfg:     cfg,
		auth:    auth,
		baseURL: cfg.BaseURL,
	}, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.handler(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	// start session cleanup goroutine if admin is enabled
	if s.auth.Enabled() {
		s.auth.StartCleanup(ctx)
	}

	// graceful shutdown
	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] shutdown error: %v", err)
		}
	}()

	log.Printf("[DEBUG] started server on %s", s.cfg.Address)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// handler returns the HTTP handler, wrapping routes with base URL support if configured.
func (s *Server) handler() http.Handler {
	routes := s.routes()
	if s.baseURL == "" {
		return routes
	}
	mux := http.NewServeMux()
	// redirect /base to /base/
	mux.HandleFunc(s.baseURL, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.baseURL+"/", http.StatusMovedPermanently)
	})
	// strip prefix for all routes under base URL
	mux.Handle(s.baseURL+"/", http.StripPrefix(s.baseURL, routes))
	return mux
}

// routes configures and returns the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	// global middleware (applies to all routes)
	router.Use(
		rest.Recoverer(log.Default()),
		rest.RealIP, // must be before Throttle to rate-limit by real client IP
		rest.Throttle(s.requestsPerSec()),
		rest.Trace,
		rest.SizeLimit(s.bodySizeLimit()),
		rest.AppInfo("shade", "mkrukov", s.cfg.Version),
		rest.Ping,
	)

	router.HandleFunc("POST /theme", s.handleThemeToggle)

	// admin routes (session auth, disabled without a password hash)
	if s.auth.Enabled() {
		router.HandleFunc("POST /admin/login", s.handleAdminLogin)
		router.Group().Route(func(admin *routegroup.Bundle) {
			admin.Use(s.auth.Middleware)
			admin.HandleFunc("GET /admin/prefs", s.handlePrefsList)
			admin.HandleFunc("DELETE /admin/prefs/{key...}", s.handlePrefDelete)
		})
	}

	// everything else is the static site
	router.HandleFunc("GET /", s.handlePage)

	return router
}

// bodySizeLimit returns the configured body size limit, or default 64KB if not set.
func (s *Server) bodySizeLimit() int64 {
	if s.cfg.BodySizeLimit > 0 {
		return s.cfg.BodySizeLimit
	}
	return 64 * 1024 // nothing here accepts large bodies
}

// requestsPerSec returns the configured requests per second limit, or default 1000 if not set.
func (s *Server) requestsPerSec() int64 {
	if s.cfg.RequestsPerSec > 0 {
		return s.cfg.RequestsPerSec
	}
	return 1000 // default
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return 5 * time.Second
}

// cookiePath returns the path for cookies (base URL with trailing slash or "/").
func (s *Server) cookiePath() string {
	if s.baseURL == "" {
		return "/"
	}
	return s.baseURL + "/"
}
