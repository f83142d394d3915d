package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/pathfinder/internal/core"
	"github.com/JonMunkholm/pathfinder/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// multipartOverhead is headroom for the form envelope around the file part.
const multipartOverhead = 1 << 20

var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// ListJobsParams are the accepted query parameters of GET /api/jobs.
type ListJobsParams struct {
	Page           int    `query:"page" validate:"gte=1"`
	PageSize       int    `query:"page_size" validate:"gte=1"`
	Search         string `query:"search" validate:"max=200"`
	JobType        string `query:"job_type" validate:"max=100"`
	Mode           string `query:"mode" validate:"max=100"`
	Province       string `query:"province" validate:"max=100"`
	TargetAudience string `query:"target_audience" validate:"max=200"`
}

// handleUploadJobs accepts a multipart workbook in field "file".
func (s *Server) handleUploadJobs(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrFileTooLarge, err), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrNoFile, err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrNoFile, err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !workbookExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		s.respondError(w, r, fmt.Errorf("%w: %q", core.ErrUnsupportedFile, header.Filename), http.StatusBadRequest)
		return
	}
	if header.Size > maxSize {
		s.respondError(w, r, fmt.Errorf("%w: %d bytes", core.ErrFileTooLarge, header.Size), http.StatusRequestEntityTooLarge)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.UploadJobs(ctx, header.Filename, data)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListJobs returns one page of active postings.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	params, err := s.parseListParams(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	list, err := s.service.ListJobs(r.Context(), core.ListJobsQuery{
		Page:     params.Page,
		PageSize: params.PageSize,
		Filter: store.JobFilter{
			Search:         params.Search,
			JobType:        params.JobType,
			Mode:           params.Mode,
			Province:       params.Province,
			TargetAudience: params.TargetAudience,
		},
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// handleGetJob returns a single posting by id.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "jobID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		s.respondError(w, r, fmt.Errorf("%w: job id %q", core.ErrInvalidQuery, raw), http.StatusBadRequest)
		return
	}

	job, err := s.service.GetJob(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// handleUploadStatus reports upload slot usage so clients can back off.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.UploadStatus())
}

func (s *Server) handleJobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// parseListParams reads and validates the listing query string. Missing
// page and page_size take the configured defaults; page_size is capped at
// the configured maximum.
func (s *Server) parseListParams(r *http.Request) (ListJobsParams, error) {
	q := r.URL.Query()
	p := ListJobsParams{
		Page:           1,
		PageSize:       s.cfg.Query.DefaultPageSize,
		Search:         strings.TrimSpace(q.Get("search")),
		JobType:        strings.TrimSpace(q.Get("job_type")),
		Mode:           strings.TrimSpace(q.Get("mode")),
		Province:       strings.TrimSpace(q.Get("province")),
		TargetAudience: strings.TrimSpace(q.Get("target_audience")),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"page", &p.Page},
		{"page_size", &p.PageSize},
	}
	for _, f := range ints {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, fmt.Errorf("%w: %s must be an integer", core.ErrInvalidQuery, f.name)
		}
		*f.dst = n
	}

	if err := s.validate.Struct(p); err != nil {
		return p, validationError(err)
	}
	if limit := s.cfg.Query.MaxPageSize; limit > 0 {
		if err := s.validate.Var(p.PageSize, "lte="+strconv.Itoa(limit)); err != nil {
			return p, fmt.Errorf("%w: page_size must be at most %d", core.ErrInvalidQuery, limit)
		}
	}
	return p, nil
}

// validationError reports the first failed field by its query name.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %w", core.ErrInvalidQuery, err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "gte":
		return fmt.Errorf("%w: %s must be at least %s", core.ErrInvalidQuery, fe.Field(), fe.Param())
	case "lte":
		return fmt.Errorf("%w: %s must be at most %s", core.ErrInvalidQuery, fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%w: %s is longer than %s characters", core.ErrInvalidQuery, fe.Field(), fe.Param())
	default:
		return fmt.Errorf("%w: %s is invalid", core.ErrInvalidQuery, fe.Field())
	}
}
