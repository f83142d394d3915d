package ingest

// JobRecord is one job posting read from a spreadsheet row. Records exist
// only for the duration of an upload and are handed to storage as-is.
type JobRecord struct {
	Title                     string   `json:"title"`
	Employer                  string   `json:"employer"`
	PostingDate               *Date    `json:"posting_date"`
	ApplicationDeadline       *Date    `json:"application_deadline"`
	LinkToPosting             *string  `json:"link_to_posting"`
	Mode                      *string  `json:"mode"`
	JobType                   *string  `json:"job_type"`
	Term                      *string  `json:"term"`
	WithPay                   bool     `json:"with_pay"`
	StartMonth                *string  `json:"start_month"`
	EndMonth                  *string  `json:"end_month"`
	DurationMonths            *float64 `json:"duration_months"`
	Province                  *string  `json:"province"`
	City                      *string  `json:"city"`
	TargetAudience            *string  `json:"target_audience"`
	Description               *string  `json:"description"`
	Responsibilities          *string  `json:"responsibilities"`
	Requirements              *string  `json:"requirements"`
	MajorsRequired            []string `json:"majors_required"` // nil when no major columns are filled
	OtherAcademicRequirements *string  `json:"other_academic_requirements"`
	Assets                    *string  `json:"assets"`
	EmployerNotes             *string  `json:"employer_notes"`
	DedupeHash                string   `json:"dedupe_hash"`
}

// Batch is the result of parsing one workbook: the records that parsed
// cleanly and one message per rejected row, both in sheet order.
type Batch struct {
	Records []JobRecord `json:"records"`
	Errors  []string    `json:"errors"`
}
