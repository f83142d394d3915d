package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/JonMunkholm/pathfinder/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrJobNotFound is returned when no active or inactive posting has the id.
	ErrJobNotFound = errors.New("job not found")

	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrInvalidQuery wraps a rejected query or path parameter.
	ErrInvalidQuery = errors.New("invalid query parameter")
)

// Pool is the subset of *pgxpool.Pool the service uses.
type Pool interface {
	store.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// JobWriter is the storage the upload commit needs: a dedupe lookup and an
// insert, both run inside the upload transaction.
type JobWriter interface {
	GetJobByDedupeHash(ctx context.Context, hash string) (*store.Job, error)
	InsertJob(ctx context.Context, rec ingest.JobRecord, uploadID uuid.UUID) (bool, error)
}

// UploadResult summarizes one committed workbook.
type UploadResult struct {
	UploadID    string        `json:"upload_id"`
	FileName    string        `json:"-"`
	JobsAdded   int           `json:"jobs_added"`
	JobsSkipped int           `json:"jobs_skipped"`
	Errors      []string      `json:"errors"`
	Duration    time.Duration `json:"-"`
}

// ListJobsQuery selects one page of active postings.
type ListJobsQuery struct {
	Page     int
	PageSize int
	Filter   store.JobFilter
}

// JobList is one page of postings plus the total matching count.
type JobList struct {
	Jobs     []store.Job `json:"jobs"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// Stats reports aggregate counts.
type Stats struct {
	TotalJobs int64 `json:"total_jobs"`
}
