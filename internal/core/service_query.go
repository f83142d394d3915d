package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/pathfinder/internal/store"
)

// ListJobs returns one page of active postings. A zero Page or PageSize
// takes the default; PageSize above the maximum is clamped.
func (s *Service) ListJobs(ctx context.Context, q ListJobsQuery) (*JobList, error) {
	page, size := s.normalizePage(q.Page, q.PageSize)

	queries := store.New(s.pool)

	total, err := queries.CountJobs(ctx, q.Filter)
	if err != nil {
		return nil, err
	}

	jobs, err := queries.ListJobs(ctx, q.Filter, size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	return &JobList{
		Jobs:     jobs,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

func (s *Service) normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = s.defaultPageSize
	}
	if size > s.maxPageSize {
		size = s.maxPageSize
	}
	return page, size
}

// GetJob returns one posting by id, or ErrJobNotFound.
func (s *Service) GetJob(ctx context.Context, id int64) (*store.Job, error) {
	job, err := store.New(s.pool).GetJob(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrJobNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Stats returns the number of active postings.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	n, err := store.New(s.pool).CountActiveJobs(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{TotalJobs: n}, nil
}
