package store

import (
	"fmt"
	"strings"
)

// JobFilter narrows a job listing. Empty fields are ignored.
type JobFilter struct {
	Search         string
	JobType        string
	Mode           string
	Province       string
	TargetAudience string
}

// searchColumns are matched case-insensitively against JobFilter.Search.
var searchColumns = []string{"title", "employer", "description"}

// WhereBuilder accumulates parameterized conditions joined by AND.
type WhereBuilder struct {
	conditions []string
	args       []interface{}
	argIndex   int
}

// NewWhereBuilder returns an empty builder whose first placeholder is $1.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{argIndex: 1}
}

// Add appends "col = $n". Empty values are skipped.
func (wb *WhereBuilder) Add(col, value string) {
	if value == "" {
		return
	}
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", col, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddBool appends "col = $n" for a boolean value.
func (wb *WhereBuilder) AddBool(col string, value bool) {
	wb.conditions = append(wb.conditions, fmt.Sprintf("%s = $%d", col, wb.argIndex))
	wb.args = append(wb.args, value)
	wb.argIndex++
}

// AddSearch matches query as a substring of any of cols. LIKE wildcards in
// query are escaped so they match literally.
func (wb *WhereBuilder) AddSearch(query string, cols []string) {
	if query == "" || len(cols) == 0 {
		return
	}

	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", col, wb.argIndex)
	}
	wb.conditions = append(wb.conditions, "("+strings.Join(parts, " OR ")+")")
	wb.args = append(wb.args, "%"+escapeLike(query)+"%")
	wb.argIndex++
}

// NextArgIndex returns the placeholder number the next argument will use.
func (wb *WhereBuilder) NextArgIndex() int {
	return wb.argIndex
}

// Build returns the WHERE clause with a leading space, or "" and nil args
// when no conditions were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}

// activeJobsWhere builds the condition set shared by ListJobs and CountJobs.
func activeJobsWhere(f JobFilter) *WhereBuilder {
	wb := NewWhereBuilder()
	wb.AddBool("is_active", true)
	wb.AddSearch(f.Search, searchColumns)
	wb.Add("job_type", f.JobType)
	wb.Add("mode", f.Mode)
	wb.Add("province", f.Province)
	wb.Add("target_audience", f.TargetAudience)
	return wb
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
