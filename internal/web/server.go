// Package web provides the JSON HTTP API for uploading and browsing job postings.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/JonMunkholm/pathfinder/internal/config"
	"github.com/JonMunkholm/pathfinder/internal/core"
	"github.com/JonMunkholm/pathfinder/internal/store"
	mw "github.com/JonMunkholm/pathfinder/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// JobService is the part of core.Service the handlers call.
type JobService interface {
	UploadJobs(ctx context.Context, fileName string, data []byte) (*core.UploadResult, error)
	ListJobs(ctx context.Context, q core.ListJobsQuery) (*core.JobList, error)
	GetJob(ctx context.Context, id int64) (*store.Job, error)
	Stats(ctx context.Context) (*core.Stats, error)
	Ping(ctx context.Context) error
	UploadStatus() core.UploadLimiterStatus
}

// Server is the HTTP server for the job posting API.
type Server struct {
	service  JobService
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
	validate *validator.Validate
}

// NewServer wires routes and middleware for service using cfg.
func NewServer(service JobService, cfg *config.Config) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		router:   chi.NewRouter(),
		validate: newValidator(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))

	if s.cfg.Rate.Enabled {
		s.router.Use(mw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute).Handler)
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		upload := r.With(mw.APIKeyAuth(&s.cfg.Security))
		if s.cfg.Rate.Enabled {
			upload = upload.With(mw.NewRateLimiter(s.cfg.Rate.UploadLimit).Handler)
		}
		upload.Post("/upload-jobs", s.handleUploadJobs)
		r.Get("/uploads/status", s.handleUploadStatus)

		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/stats", s.handleJobStats)
		r.Get("/jobs/{jobID}", s.handleGetJob)
	})
}

// newValidator reports field errors by their query parameter name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("query"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Start listens on the configured address until Shutdown is called. After
// Shutdown it returns immediately without listening.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}
