package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnreadableWorkbook is returned when the bytes are not a readable xlsx file.
	ErrUnreadableWorkbook = errors.New("unreadable workbook")

	// ErrSheetNotFound is returned when the workbook has no sheet named SheetName.
	ErrSheetNotFound = errors.New("sheet not found")
)

// rowSource yields decoded rows in sheet order.
type rowSource interface {
	Next() bool
	// RowNumber is the 1-based sheet row of the current row.
	RowNumber() int
	Values() ([]Cell, error)
	Err() error
	Close() error
}

// sheetRows streams one worksheet through excelize's row iterator and
// decodes each raw value using the cell's stored type and number format.
type sheetRows struct {
	file  *excelize.File
	sheet string
	rows  *excelize.Rows
	row   int

	date1904 bool

	dateStyles map[int]bool
}

// openSheet looks the sheet up by exact name, as the upload template requires.
func openSheet(f *excelize.File, name string) (*sheetRows, error) {
	found := false
	for _, s := range f.GetSheetList() {
		if s == name {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read workbook properties: %w", err)
	}

	rows, err := f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("open rows of %q: %w", name, err)
	}

	return &sheetRows{
		file:       f,
		sheet:      name,
		rows:       rows,
		date1904:   props.Date1904 != nil && *props.Date1904,
		dateStyles: make(map[int]bool),
	}, nil
}

func (s *sheetRows) Next() bool {
	if !s.rows.Next() {
		return false
	}
	s.row++
	return true
}

func (s *sheetRows) RowNumber() int { return s.row }

func (s *sheetRows) Err() error { return s.rows.Error() }

func (s *sheetRows) Close() error { return s.rows.Close() }

// Values decodes the current row. Trailing blank cells are not returned.
func (s *sheetRows) Values() ([]Cell, error) {
	raw, err := s.rows.Columns(excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read row: %w", err)
	}

	cells := make([]Cell, len(raw))
	for i, v := range raw {
		if v == "" {
			continue
		}
		c, err := s.decode(i, v)
		if err != nil {
			return nil, err
		}
		cells[i] = c
	}
	return cells, nil
}

// decode turns a raw cell value into a typed Cell. Numbers carrying a date
// number format become time.Time in the workbook's own date system, or
// TimeOfDay when the serial is below one day.
func (s *sheetRows) decode(col int, raw string) (Cell, error) {
	axis, err := excelize.CoordinatesToCellName(col+1, s.row)
	if err != nil {
		return nil, err
	}

	typ, err := s.file.GetCellType(s.sheet, axis)
	if err != nil {
		return nil, fmt.Errorf("cell %s: %w", axis, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil

	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("cell %s: invalid number %q", axis, raw)
		}
		isDate, err := s.hasDateFormat(axis)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", axis, err)
		}
		if isDate {
			if f >= 0 && f < 1 {
				return TimeOfDay(math.Round(f * float64(24*time.Hour))), nil
			}
			if t, err := excelize.ExcelDateToTime(f, s.date1904); err == nil {
				return t, nil
			}
		}
		return f, nil

	case excelize.CellTypeDate:
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return raw, nil

	default:
		// Shared, inline and formula strings plus error values like #N/A.
		return raw, nil
	}
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

func (s *sheetRows) hasDateFormat(axis string) (bool, error) {
	idx, err := s.file.GetCellStyle(s.sheet, axis)
	if err != nil {
		return false, err
	}
	if isDate, ok := s.dateStyles[idx]; ok {
		return isDate, nil
	}

	style, err := s.file.GetStyle(idx)
	if err != nil {
		return false, err
	}
	custom := ""
	if style.CustomNumFmt != nil {
		custom = *style.CustomNumFmt
	}
	isDate := isDateNumFmt(style.NumFmt, custom)
	s.dateStyles[idx] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether a built-in format id or custom format code
// renders a date or time.
func isDateNumFmt(id int, custom string) bool {
	if custom != "" {
		return isDateFormatCode(custom)
	}
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode scans a format code for date tokens outside quoted
// literals, bracketed sections and escapes.
func isDateFormatCode(code string) bool {
	// Only the first section (positive numbers) matters.
	if i := strings.IndexByte(code, ';'); i >= 0 {
		code = code[:i]
	}

	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			switch ch | 0x20 { // ASCII lowercase
			case 'd', 'm', 'y', 'h', 's':
				return true
			}
		}
	}
	return false
}
