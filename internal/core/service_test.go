package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JonMunkholm/pathfinder/internal/config"
	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/JonMunkholm/pathfinder/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ---------------------------------------------------------------------------
// insertNew
// ---------------------------------------------------------------------------

type fakeWriter struct {
	stored    map[string]bool
	inserted  []string
	lookupErr error
	insertErr error
	// lose reports insert conflicts for these hashes, as if another
	// transaction stored them first.
	lose map[string]bool
}

func newFakeWriter(existing ...string) *fakeWriter {
	w := &fakeWriter{stored: map[string]bool{}, lose: map[string]bool{}}
	for _, h := range existing {
		w.stored[h] = true
	}
	return w
}

func (w *fakeWriter) GetJobByDedupeHash(_ context.Context, hash string) (*store.Job, error) {
	if w.lookupErr != nil {
		return nil, w.lookupErr
	}
	if w.stored[hash] {
		return &store.Job{DedupeHash: hash}, nil
	}
	return nil, store.ErrNotFound
}

func (w *fakeWriter) InsertJob(_ context.Context, rec ingest.JobRecord, _ uuid.UUID) (bool, error) {
	if w.insertErr != nil {
		return false, w.insertErr
	}
	if w.lose[rec.DedupeHash] {
		return false, nil
	}
	w.stored[rec.DedupeHash] = true
	w.inserted = append(w.inserted, rec.DedupeHash)
	return true, nil
}

func record(employer, title, city string) ingest.JobRecord {
	return ingest.JobRecord{
		Title:      title,
		Employer:   employer,
		WithPay:    true,
		DedupeHash: ingest.DedupeHash(employer, title, city),
	}
}

func TestInsertNew_SkipsStoredAndRepeatedPostings(t *testing.T) {
	a := record("Acme", "Intern", "Toronto")
	b := record("Globex", "Analyst", "Ottawa")
	aAgain := record(" ACME ", "intern", "toronto")

	w := newFakeWriter(b.DedupeHash)

	added, skipped, err := insertNew(context.Background(), w, []ingest.JobRecord{a, b, aAgain}, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []string{a.DedupeHash}, w.inserted)
}

func TestInsertNew_InsertConflictCountsAsSkipped(t *testing.T) {
	a := record("Acme", "Intern", "Toronto")
	w := newFakeWriter()
	w.lose[a.DedupeHash] = true

	added, skipped, err := insertNew(context.Background(), w, []ingest.JobRecord{a}, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, skipped)
}

func TestInsertNew_StorageErrorsAbort(t *testing.T) {
	recs := []ingest.JobRecord{record("Acme", "Intern", "Toronto")}

	t.Run("lookup", func(t *testing.T) {
		w := newFakeWriter()
		w.lookupErr = errors.New("connection reset by peer")

		_, _, err := insertNew(context.Background(), w, recs, uuid.New())
		require.Error(t, err)
		assert.ErrorIs(t, err, w.lookupErr)
	})

	t.Run("insert", func(t *testing.T) {
		w := newFakeWriter()
		w.insertErr = errors.New("insert job posting: deadlock detected")

		_, _, err := insertNew(context.Background(), w, recs, uuid.New())
		assert.ErrorIs(t, err, w.insertErr)
	})
}

// ---------------------------------------------------------------------------
// UploadJobs paths that never reach the database
// ---------------------------------------------------------------------------

func workbook(t *testing.T, sheet string, rows map[int][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))

	for r, values := range rows {
		for c, v := range values {
			axis, err := excelize.CoordinatesToCellName(c+1, r)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestUploadJobs_RejectsBeforeParsing(t *testing.T) {
	svc := NewService(nil, &config.Config{
		Upload: config.UploadConfig{MaxFileSize: 8, MaxConcurrent: 1, MaxWaitTime: time.Second},
	})

	_, err := svc.UploadJobs(context.Background(), "jobs.xlsx", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = svc.UploadJobs(context.Background(), "jobs.xlsx", make([]byte, 9))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadJobs_FatalWorkbookErrors(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.UploadJobs(context.Background(), "notes.xlsx", []byte("not a zip archive"))
	assert.ErrorIs(t, err, ingest.ErrUnreadableWorkbook)
	assert.Equal(t, "XLS002", MapError(err).Code)

	data := workbook(t, "Postings", map[int][]any{1: {"header"}})
	_, err = svc.UploadJobs(context.Background(), "jobs.xlsx", data)
	assert.ErrorIs(t, err, ingest.ErrSheetNotFound)
	assert.Equal(t, "XLS001", MapError(err).Code)
}

func TestUploadJobs_OnlyRowErrors(t *testing.T) {
	svc := NewService(nil, nil)

	data := workbook(t, "Main", map[int][]any{
		1: {"Pathfinder export"},
		2: {"#", "Title", "Date", "Employer"},
		3: {1, "Analyst"},
	})

	result, err := svc.UploadJobs(context.Background(), "jobs.xlsx", data)

	require.NoError(t, err)
	assert.Equal(t, 0, result.JobsAdded)
	assert.Equal(t, 0, result.JobsSkipped)
	assert.Equal(t, []string{"Row 3: " + ingest.MsgMissingRequired}, result.Errors)
	assert.NotEmpty(t, result.UploadID)
	assert.Equal(t, 0, svc.Limiter().ActiveCount())
}

func TestUploadJobs_LimiterBusy(t *testing.T) {
	svc := NewService(nil, &config.Config{
		Upload: config.UploadConfig{MaxConcurrent: 1, MaxWaitTime: 20 * time.Millisecond},
	})
	require.True(t, svc.Limiter().TryAcquire())
	defer svc.Limiter().Release()

	_, err := svc.UploadJobs(context.Background(), "jobs.xlsx", []byte("x"))
	assert.ErrorIs(t, err, ErrTooManyUploads)
}

// ---------------------------------------------------------------------------
// Pagination
// ---------------------------------------------------------------------------

func TestNormalizePage(t *testing.T) {
	svc := NewService(nil, &config.Config{Query: config.QueryConfig{DefaultPageSize: 20, MaxPageSize: 100}})

	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{3, 50, 3, 50},
		{-2, 500, 1, 100},
		{1, 100, 1, 100},
	}

	for _, tt := range tests {
		page, size := svc.normalizePage(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, page, "page for (%d, %d)", tt.page, tt.size)
		assert.Equal(t, tt.wantSize, size, "size for (%d, %d)", tt.page, tt.size)
	}
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(nil, nil)

	assert.Equal(t, int64(10<<20), svc.maxFileSize)
	assert.Equal(t, 100, svc.maxPageSize)
	assert.Equal(t, UploadLimiterStatus{
		Available:     DefaultMaxConcurrentUploads,
		MaxConcurrent: DefaultMaxConcurrentUploads,
	}, svc.UploadStatus())
}
