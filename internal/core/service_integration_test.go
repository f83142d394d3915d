//go:build integration

package core

import (
	"context"
	"os"
	"testing"

	"github.com/JonMunkholm/pathfinder/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, store.Migrate(ctx, pool))
	return pool
}

func TestUploadJobs_ReuploadSkipsKnownPostings(t *testing.T) {
	pool := testPool(t)
	svc := NewService(pool, nil)
	ctx := context.Background()

	employer := "Acme " + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM job_postings WHERE employer = $1", employer)
	})

	row := func(title, city string) []any {
		r := make([]any, 15)
		r[1], r[3], r[14] = title, employer, city
		return r
	}
	data := workbook(t, "Main", map[int][]any{
		1: {"export"},
		2: {"#", "Title"},
		3: row("Data Analyst", "Toronto"),
		4: row("Data Analyst", "Toronto"),
		5: row("Data Analyst", "Ottawa"),
		6: {nil, "", nil, employer},
	})

	first, err := svc.UploadJobs(ctx, "jobs.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, 2, first.JobsAdded)
	assert.Equal(t, 1, first.JobsSkipped)
	assert.Len(t, first.Errors, 1)

	second, err := svc.UploadJobs(ctx, "jobs.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, 0, second.JobsAdded)
	assert.Equal(t, 3, second.JobsSkipped)

	list, err := svc.ListJobs(ctx, ListJobsQuery{Filter: store.JobFilter{Search: employer}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	for _, job := range list.Jobs {
		assert.Equal(t, first.UploadID, job.UploadID)
	}

	job, err := svc.GetJob(ctx, list.Jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, employer, job.Employer)

	_, err = svc.GetJob(ctx, -1)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
