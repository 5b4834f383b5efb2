// Package web provides the HTTP server and JSON API for allocation imports.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/retailops/allocator/internal/catalog"
	"github.com/retailops/allocator/internal/config"
	"github.com/retailops/allocator/internal/importer"
	"github.com/retailops/allocator/internal/web/middleware"
)

// Refresher triggers an on-demand catalog refresh. *sync.Scheduler satisfies
// it; nil means catalog sync is disabled.
type Refresher interface {
	RefreshOnce(ctx context.Context) error
}

// Server is the HTTP server for the allocation import service.
type Server struct {
	service   *importer.Service
	cache     *catalog.Cache
	refresher Refresher
	cfg       *config.Config
	router    *chi.Mux
	server    *http.Server
}

// NewServer creates a new Server instance. refresher may be nil when
// catalog sync is disabled.
func NewServer(service *importer.Service, cache *catalog.Cache, refresher Refresher, cfg *config.Config) *Server {
	s := &Server{
		service:   service,
		cache:     cache,
		refresher: refresher,
		cfg:       cfg,
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Server.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))

	// Security hardening
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/api", func(r chi.Router) {
		// Import starts get a tighter per-IP limit than general traffic.
		in := r
		if s.cfg.Rate.Enabled {
			importLimiter := newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute)
			in = r.With(importLimiter.middleware)
		}

		// Import operations
		in.Post("/imports", s.handleStartImport)
		in.Post("/imports/batch", s.handleStartBatchImport)
		in.Post("/preview", s.handlePreview)
		r.Get("/imports", s.handleImportHistory)
		r.Get("/imports/{importID}", s.handleImportRecord)
		r.Get("/imports/{importID}/progress", s.handleImportProgress)
		r.Get("/imports/{importID}/result", s.handleImportResult)
		r.Post("/imports/{importID}/cancel", s.handleCancelImport)
		r.Post("/imports/{importID}/rollback", s.handleRollbackImport)
		r.Get("/imports/{importID}/allocations", s.handleAllocations)
		r.Get("/imports/{importID}/export", s.handleExportAllocations)

		// Catalogs
		r.Get("/catalog/items", s.handleCatalogItems)
		r.Get("/catalog/stores", s.handleCatalogStores)
		r.Post("/catalog/sync", s.handleCatalogSync)

		// Audit log
		r.Get("/audit-log", s.handleAuditLog)
	})
}

// Start begins listening for HTTP requests on the configured address.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // 0 for SSE
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	snap := s.cache.Get()
	writeJSON(w, map[string]any{
		"status": "ok",
		"catalog": map[string]any{
			"items":  len(snap.Items),
			"stores": len(snap.Stores),
		},
	})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
