package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/pathfinder/internal/config"
)

// Service holds the job posting operations shared by the HTTP API and CLI.
type Service struct {
	pool    Pool
	limiter *UploadLimiter

	maxFileSize     int64
	uploadTimeout   time.Duration
	defaultPageSize int
	maxPageSize     int
}

// NewService creates a Service backed by pool. A nil cfg uses the built-in
// defaults.
func NewService(pool Pool, cfg *config.Config) *Service {
	s := &Service{
		pool:            pool,
		maxFileSize:     10 << 20,
		uploadTimeout:   2 * time.Minute,
		defaultPageSize: 20,
		maxPageSize:     100,
	}

	if cfg == nil {
		s.limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
		return s
	}

	s.limiter = NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	if cfg.Upload.MaxFileSize > 0 {
		s.maxFileSize = cfg.Upload.MaxFileSize
	}
	if cfg.Upload.Timeout > 0 {
		s.uploadTimeout = cfg.Upload.Timeout
	}
	if cfg.Query.DefaultPageSize > 0 {
		s.defaultPageSize = cfg.Query.DefaultPageSize
	}
	if cfg.Query.MaxPageSize > 0 {
		s.maxPageSize = cfg.Query.MaxPageSize
	}
	return s
}

// Limiter exposes the upload limiter for shutdown and health reporting.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// UploadStatus reports how many upload slots are in use.
func (s *Service) UploadStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// Ping checks database connectivity.
func (s *Service) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
