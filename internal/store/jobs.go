package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("job posting not found")

// uploadLockKey identifies the advisory lock serializing upload commits.
const uploadLockKey int64 = 0x70617468

// Job is a persisted job posting.
type Job struct {
	ID                        int64        `json:"id"`
	Title                     string       `json:"title"`
	Employer                  string       `json:"employer"`
	PostingDate               *ingest.Date `json:"posting_date"`
	ApplicationDeadline       *ingest.Date `json:"application_deadline"`
	LinkToPosting             *string      `json:"link_to_posting"`
	Mode                      *string      `json:"mode"`
	JobType                   *string      `json:"job_type"`
	Term                      *string      `json:"term"`
	WithPay                   bool         `json:"with_pay"`
	StartMonth                *string      `json:"start_month"`
	EndMonth                  *string      `json:"end_month"`
	DurationMonths            *float64     `json:"duration_months"`
	Province                  *string      `json:"province"`
	City                      *string      `json:"city"`
	TargetAudience            *string      `json:"target_audience"`
	Description               *string      `json:"description"`
	Responsibilities          *string      `json:"responsibilities"`
	Requirements              *string      `json:"requirements"`
	MajorsRequired            []string     `json:"majors_required"`
	OtherAcademicRequirements *string      `json:"other_academic_requirements"`
	Assets                    *string      `json:"assets"`
	EmployerNotes             *string      `json:"employer_notes"`
	DedupeHash                string       `json:"-"`
	IsActive                  bool         `json:"is_active"`
	UploadID                  string       `json:"upload_id,omitempty"`
	CreatedAt                 time.Time    `json:"created_at"`
	UpdatedAt                 time.Time    `json:"updated_at"`
}

const jobColumns = `id, title, employer, posting_date, application_deadline, link_to_posting,
	mode, job_type, term, with_pay, start_month, end_month, duration_months,
	province, city, target_audience, description, responsibilities, requirements,
	majors_required, other_academic_requirements, assets, employer_notes,
	dedupe_hash, is_active, upload_id, created_at, updated_at`

// Queries runs job posting statements against a pool or transaction.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// LockUploads takes a transaction-scoped advisory lock so concurrent uploads
// check and insert dedupe hashes one at a time. Only meaningful inside a
// transaction; the lock is released on commit or rollback.
func (q *Queries) LockUploads(ctx context.Context) error {
	if _, err := q.db.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", uploadLockKey); err != nil {
		return fmt.Errorf("lock uploads: %w", err)
	}
	return nil
}

// GetJobByDedupeHash returns the posting with the given hash, or ErrNotFound.
func (q *Queries) GetJobByDedupeHash(ctx context.Context, hash string) (*Job, error) {
	row := q.db.QueryRow(ctx, "SELECT "+jobColumns+" FROM job_postings WHERE dedupe_hash = $1", hash)
	return scanJob(row)
}

// GetJob returns the posting with the given id, or ErrNotFound.
func (q *Queries) GetJob(ctx context.Context, id int64) (*Job, error) {
	row := q.db.QueryRow(ctx, "SELECT "+jobColumns+" FROM job_postings WHERE id = $1", id)
	return scanJob(row)
}

const insertJobSQL = `INSERT INTO job_postings (
	title, employer, posting_date, application_deadline, link_to_posting,
	mode, job_type, term, with_pay, start_month, end_month, duration_months,
	province, city, target_audience, description, responsibilities, requirements,
	majors_required, other_academic_requirements, assets, employer_notes,
	dedupe_hash, upload_id
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
	$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
)
ON CONFLICT (dedupe_hash) DO NOTHING`

// InsertJob stores rec tagged with uploadID. It reports false when a posting
// with the same dedupe hash already exists.
func (q *Queries) InsertJob(ctx context.Context, rec ingest.JobRecord, uploadID uuid.UUID) (bool, error) {
	majors, err := majorsParam(rec.MajorsRequired)
	if err != nil {
		return false, err
	}

	tag, err := q.db.Exec(ctx, insertJobSQL,
		rec.Title,
		rec.Employer,
		ToPgDate(rec.PostingDate),
		ToPgDate(rec.ApplicationDeadline),
		ToPgText(rec.LinkToPosting),
		ToPgText(rec.Mode),
		ToPgText(rec.JobType),
		ToPgText(rec.Term),
		rec.WithPay,
		ToPgText(rec.StartMonth),
		ToPgText(rec.EndMonth),
		ToPgFloat8(rec.DurationMonths),
		ToPgText(rec.Province),
		ToPgText(rec.City),
		ToPgText(rec.TargetAudience),
		ToPgText(rec.Description),
		ToPgText(rec.Responsibilities),
		ToPgText(rec.Requirements),
		majors,
		ToPgText(rec.OtherAcademicRequirements),
		ToPgText(rec.Assets),
		ToPgText(rec.EmployerNotes),
		rec.DedupeHash,
		ToPgUUID(uploadID),
	)
	if err != nil {
		return false, fmt.Errorf("insert job posting: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListJobs returns active postings matching f, newest id first.
func (q *Queries) ListJobs(ctx context.Context, f JobFilter, limit, offset int) ([]Job, error) {
	wb := activeJobsWhere(f)
	where, args := wb.Build()
	idx := wb.NextArgIndex()

	query := fmt.Sprintf("SELECT %s FROM job_postings%s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		jobColumns, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list job postings: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list job postings: %w", err)
	}
	return jobs, nil
}

// CountJobs counts active postings matching f.
func (q *Queries) CountJobs(ctx context.Context, f JobFilter) (int64, error) {
	where, args := activeJobsWhere(f).Build()

	var n int64
	if err := q.db.QueryRow(ctx, "SELECT COUNT(*) FROM job_postings"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count job postings: %w", err)
	}
	return n, nil
}

// CountActiveJobs counts all active postings.
func (q *Queries) CountActiveJobs(ctx context.Context) (int64, error) {
	return q.CountJobs(ctx, JobFilter{})
}

func scanJob(row pgx.Row) (*Job, error) {
	var (
		job                                     Job
		postingDate, deadline                   pgtype.Date
		link, mode, jobType, term               pgtype.Text
		startMonth, endMonth                    pgtype.Text
		duration                                pgtype.Float8
		province, city, audience                pgtype.Text
		description, responsibilities, requires pgtype.Text
		majors                                  []byte
		otherAcademic, assets, employerNotes    pgtype.Text
		uploadID                                pgtype.UUID
	)

	err := row.Scan(
		&job.ID, &job.Title, &job.Employer, &postingDate, &deadline, &link,
		&mode, &jobType, &term, &job.WithPay, &startMonth, &endMonth, &duration,
		&province, &city, &audience, &description, &responsibilities, &requires,
		&majors, &otherAcademic, &assets, &employerNotes,
		&job.DedupeHash, &job.IsActive, &uploadID, &job.CreatedAt, &job.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job posting: %w", err)
	}

	job.PostingDate = fromPgDate(postingDate)
	job.ApplicationDeadline = fromPgDate(deadline)
	job.LinkToPosting = fromPgText(link)
	job.Mode = fromPgText(mode)
	job.JobType = fromPgText(jobType)
	job.Term = fromPgText(term)
	job.StartMonth = fromPgText(startMonth)
	job.EndMonth = fromPgText(endMonth)
	job.DurationMonths = fromPgFloat8(duration)
	job.Province = fromPgText(province)
	job.City = fromPgText(city)
	job.TargetAudience = fromPgText(audience)
	job.Description = fromPgText(description)
	job.Responsibilities = fromPgText(responsibilities)
	job.Requirements = fromPgText(requires)
	job.OtherAcademicRequirements = fromPgText(otherAcademic)
	job.Assets = fromPgText(assets)
	job.EmployerNotes = fromPgText(employerNotes)
	job.UploadID = PgUUIDToString(uploadID)

	if job.MajorsRequired, err = decodeMajors(majors); err != nil {
		return nil, err
	}
	return &job, nil
}
