package store

// convert.go maps between record fields and pgtype values.
//
// The To* functions return pgtype values with Valid=false for nil input so
// optional fields are stored as NULL. The from* functions do the reverse.

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ToPgText converts an optional string to pgtype.Text.
func ToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// ToPgDate converts an optional calendar date to pgtype.Date.
func ToPgDate(d *ingest.Date) pgtype.Date {
	if d == nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: d.Time(), Valid: true}
}

// ToPgFloat8 converts an optional float to pgtype.Float8.
func ToPgFloat8(f *float64) pgtype.Float8 {
	if f == nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *f, Valid: true}
}

// ToPgUUID converts a uuid to pgtype.UUID. The nil uuid is stored as NULL.
func ToPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

// majorsParam encodes majors for the JSONB column. A nil slice becomes SQL
// NULL rather than the JSON literal null.
func majorsParam(majors []string) (any, error) {
	if len(majors) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(majors)
	if err != nil {
		return nil, fmt.Errorf("encode majors: %w", err)
	}
	return b, nil
}

func fromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func fromPgDate(d pgtype.Date) *ingest.Date {
	if !d.Valid {
		return nil
	}
	date := ingest.DateOf(d.Time)
	return &date
}

func fromPgFloat8(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func decodeMajors(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var majors []string
	if err := json.Unmarshal(raw, &majors); err != nil {
		return nil, fmt.Errorf("decode majors: %w", err)
	}
	if len(majors) == 0 {
		return nil, nil
	}
	return majors, nil
}
