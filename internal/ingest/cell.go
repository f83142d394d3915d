package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Cell is a single decoded spreadsheet value. After decoding it holds one of:
// nil (absent), string, float64, int, bool, time.Time, Date or TimeOfDay.
type Cell = any

// TimeOfDay is a time-only spreadsheet value: a date-formatted serial below
// one day. It is never a calendar date.
type TimeOfDay time.Duration

// String formats t as HH:MM:SS.
func (t TimeOfDay) String() string {
	return time.Time{}.Add(time.Duration(t)).Format(time.TimeOnly)
}

// Date is a calendar date with no time-of-day or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats d as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes d as a "YYYY-MM-DD" string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = DateOf(t)
	return nil
}

// isAbsent reports whether c carries no value. Empty strings count as absent
// because the xlsx reader cannot tell a blank cell from an empty one.
func isAbsent(c Cell) bool {
	if c == nil {
		return true
	}
	s, ok := c.(string)
	return ok && s == ""
}

// isBlank is isAbsent plus whitespace-only text.
func isBlank(c Cell) bool {
	if isAbsent(c) {
		return true
	}
	s, ok := c.(string)
	return ok && strings.TrimSpace(s) == ""
}

// cellText renders any cell value as text.
func cellText(c Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case Date, TimeOfDay:
		return fmt.Sprint(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.DateTime)
	default:
		return fmt.Sprint(v)
	}
}

// optionalText returns nil for an absent cell, otherwise its text.
func optionalText(c Cell) *string {
	if isAbsent(c) {
		return nil
	}
	s := cellText(c)
	return &s
}

// cellFloat coerces c to a finite number. Anything that cannot be coerced
// yields false rather than an error.
func cellFloat(c Cell) (float64, bool) {
	var f float64
	switch v := c.(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
