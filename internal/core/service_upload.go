package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/JonMunkholm/pathfinder/internal/logging"
	"github.com/JonMunkholm/pathfinder/internal/store"
	"github.com/google/uuid"
)

// UploadJobs parses a workbook and stores every posting not already known.
//
// Row-level problems never fail the upload; they are returned in
// UploadResult.Errors. A workbook that cannot be opened or has no "Main"
// sheet fails with an error wrapping the ingest sentinel. All inserts for
// one upload commit together or not at all.
func (s *Service) UploadJobs(ctx context.Context, fileName string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), s.maxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	start := time.Now()
	uploadID := uuid.New()
	logger := logging.WithFields(ctx,
		"upload_id", uploadID.String(),
		"file_name", fileName,
		"client_ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)
	logger.Info("upload started", "bytes", len(data))

	batch, err := ingest.Parse(data)
	if err != nil {
		logger.Warn("workbook rejected", "error", err)
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	for _, msg := range batch.Errors {
		logger.Debug("row rejected", "reason", msg)
	}

	result := &UploadResult{
		UploadID: uploadID.String(),
		FileName: fileName,
		Errors:   batch.Errors,
	}

	if len(batch.Records) > 0 {
		added, skipped, err := s.commitRecords(ctx, batch.Records, uploadID)
		if err != nil {
			logger.Error("upload failed", "error", err, "records", len(batch.Records))
			return nil, err
		}
		result.JobsAdded = added
		result.JobsSkipped = skipped
	}

	result.Duration = time.Since(start)
	logger.Info("upload completed",
		"jobs_added", result.JobsAdded,
		"jobs_skipped", result.JobsSkipped,
		"row_errors", len(result.Errors),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// commitRecords runs the dedupe check and inserts in one transaction. The
// advisory lock makes concurrent uploads of the same posting resolve to a
// single insert.
func (s *Service) commitRecords(ctx context.Context, records []ingest.JobRecord, uploadID uuid.UUID) (int, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := store.New(tx)
	if err := q.LockUploads(ctx); err != nil {
		return 0, 0, err
	}

	added, skipped, err := insertNew(ctx, q, records, uploadID)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit upload: %w", err)
	}
	return added, skipped, nil
}

// insertNew inserts each record whose dedupe hash is neither stored nor
// repeated earlier in records. Returns the inserted and skipped counts.
func insertNew(ctx context.Context, w JobWriter, records []ingest.JobRecord, uploadID uuid.UUID) (added, skipped int, err error) {
	seen := make(map[string]struct{}, len(records))

	for i := range records {
		rec := records[i]

		if _, dup := seen[rec.DedupeHash]; dup {
			skipped++
			continue
		}
		seen[rec.DedupeHash] = struct{}{}

		_, err := w.GetJobByDedupeHash(ctx, rec.DedupeHash)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return 0, 0, fmt.Errorf("check duplicate %q at %q: %w", rec.Title, rec.Employer, err)
		}

		inserted, err := w.InsertJob(ctx, rec, uploadID)
		if err != nil {
			return 0, 0, err
		}
		if inserted {
			added++
		} else {
			skipped++
		}
	}

	return added, skipped, nil
}
