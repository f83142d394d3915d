package ingest

import "strings"

// ColumnKind is the coercion rule applied to a column.
type ColumnKind int

const (
	KindText     ColumnKind = iota // optional text, kept verbatim
	KindRequired                   // mandatory text, trimmed
	KindDate                       // normalized with NormalizeDate
	KindPayFlag                    // true unless the cell reads "no"
	KindNumber                     // optional number, absent when not numeric
	KindMajor                      // one slot of majors_required
)

func (k ColumnKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindRequired:
		return "required text"
	case KindDate:
		return "date"
	case KindPayFlag:
		return "yes/no"
	case KindNumber:
		return "number"
	case KindMajor:
		return "major"
	default:
		return "unknown"
	}
}

// Column binds a fixed zero-based sheet position to a record field.
type Column struct {
	Index  int
	Field  string
	Kind   ColumnKind
	assign func(r *JobRecord, c Cell)
}

// Positions of the fields that identify a posting.
const (
	colTitle    = 1
	colEmployer = 3
	colCity     = 14
)

// Columns is the upload template layout. Column 0 is not read.
var Columns = []Column{
	{1, "title", KindRequired, func(r *JobRecord, c Cell) { r.Title = strings.TrimSpace(cellText(c)) }},
	{2, "posting_date", KindDate, func(r *JobRecord, c Cell) { r.PostingDate = normalizeDatePtr(c) }},
	{3, "employer", KindRequired, func(r *JobRecord, c Cell) { r.Employer = strings.TrimSpace(cellText(c)) }},
	{4, "link_to_posting", KindText, func(r *JobRecord, c Cell) { r.LinkToPosting = optionalText(c) }},
	{5, "application_deadline", KindDate, func(r *JobRecord, c Cell) { r.ApplicationDeadline = normalizeDatePtr(c) }},
	{6, "mode", KindText, func(r *JobRecord, c Cell) { r.Mode = optionalText(c) }},
	{7, "job_type", KindText, func(r *JobRecord, c Cell) { r.JobType = optionalText(c) }},
	{8, "term", KindText, func(r *JobRecord, c Cell) { r.Term = optionalText(c) }},
	{9, "with_pay", KindPayFlag, func(r *JobRecord, c Cell) { r.WithPay = withPay(c) }},
	{10, "start_month", KindText, func(r *JobRecord, c Cell) { r.StartMonth = optionalText(c) }},
	{11, "end_month", KindText, func(r *JobRecord, c Cell) { r.EndMonth = optionalText(c) }},
	{12, "duration_months", KindNumber, func(r *JobRecord, c Cell) { r.DurationMonths = optionalFloat(c) }},
	{13, "province", KindText, func(r *JobRecord, c Cell) { r.Province = optionalText(c) }},
	{14, "city", KindText, func(r *JobRecord, c Cell) { r.City = optionalText(c) }},
	{15, "target_audience", KindText, func(r *JobRecord, c Cell) { r.TargetAudience = optionalText(c) }},
	{16, "description", KindText, func(r *JobRecord, c Cell) { r.Description = optionalText(c) }},
	{17, "responsibilities", KindText, func(r *JobRecord, c Cell) { r.Responsibilities = optionalText(c) }},
	{18, "requirements", KindText, func(r *JobRecord, c Cell) { r.Requirements = optionalText(c) }},
	{19, "majors_required", KindMajor, appendMajor},
	{20, "majors_required", KindMajor, appendMajor},
	{21, "majors_required", KindMajor, appendMajor},
	{22, "majors_required", KindMajor, appendMajor},
	{23, "majors_required", KindMajor, appendMajor},
	{24, "other_academic_requirements", KindText, func(r *JobRecord, c Cell) { r.OtherAcademicRequirements = optionalText(c) }},
	{25, "assets", KindText, func(r *JobRecord, c Cell) { r.Assets = optionalText(c) }},
	{26, "employer_notes", KindText, func(r *JobRecord, c Cell) { r.EmployerNotes = optionalText(c) }},
}

// ColumnCount is the width of the template.
var ColumnCount = Columns[len(Columns)-1].Index + 1

func appendMajor(r *JobRecord, c Cell) {
	if isAbsent(c) {
		return
	}
	r.MajorsRequired = append(r.MajorsRequired, cellText(c))
}

// withPay is false only for text that reads "no".
func withPay(c Cell) bool {
	s, ok := c.(string)
	if !ok {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(s), "no")
}

func optionalFloat(c Cell) *float64 {
	if isAbsent(c) {
		return nil
	}
	f, ok := cellFloat(c)
	if !ok {
		return nil
	}
	return &f
}

// cellAt returns the value at position i, treating short rows as absent.
func cellAt(row []Cell, i int) Cell {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}
