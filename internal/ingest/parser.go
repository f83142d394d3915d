// Package ingest turns an uploaded job-posting workbook into records.
//
// The workbook must follow the upload template: a sheet named "Main", two
// header rows, then one posting per row with fields at fixed column
// positions (see [Columns]). Parsing is synchronous and keeps nothing
// between calls.
//
// Failures come in two tiers. A workbook that cannot be opened, or that has
// no "Main" sheet, fails the whole call. Anything wrong with a single row is
// reported as "Row N: message" in [Batch.Errors] and that row is left out of
// [Batch.Records]. The first row whose cells are all empty ends the parse.
//
// Parse never consults storage; duplicate detection against existing data
// is the caller's job, keyed by [JobRecord.DedupeHash].
package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet read from every upload.
const SheetName = "Main"

// firstDataRow is the 1-based row after the two header rows.
const firstDataRow = 3

// MsgMissingRequired is reported for rows without a title or employer.
const MsgMissingRequired = "Missing title or employer, skipped"

// Parse reads the "Main" sheet of an xlsx workbook.
func Parse(data []byte) (Batch, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrUnreadableWorkbook, err)
	}
	defer f.Close()

	rows, err := openSheet(f, SheetName)
	if err != nil {
		return Batch{}, err
	}
	defer rows.Close()

	return buildBatch(rows)
}

type outcomeKind int

const (
	outcomeEmitted outcomeKind = iota
	outcomeSkipped
	outcomeFailed
	outcomeStop
)

// rowOutcome is the result of processing one row.
type rowOutcome struct {
	kind   outcomeKind
	record JobRecord
	reason string
}

// buildBatch folds row outcomes into a Batch, stopping at the first blank row.
func buildBatch(src rowSource) (Batch, error) {
	batch := Batch{Errors: []string{}}

	for src.Next() {
		n := src.RowNumber()
		if n < firstDataRow {
			continue
		}

		out := processRow(src.Values)
		if out.kind == outcomeStop {
			break
		}

		switch out.kind {
		case outcomeEmitted:
			batch.Records = append(batch.Records, out.record)
		case outcomeSkipped, outcomeFailed:
			batch.Errors = append(batch.Errors, fmt.Sprintf("Row %d: %s", n, out.reason))
		}
	}

	if err := src.Err(); err != nil {
		return Batch{}, fmt.Errorf("read sheet %q: %w", SheetName, err)
	}

	return batch, nil
}

// processRow runs every step for one row. A panic anywhere in here is
// confined to the row.
func processRow(values func() ([]Cell, error)) (out rowOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = rowOutcome{kind: outcomeFailed, reason: fmt.Sprint(r)}
		}
	}()

	row, err := values()
	if err != nil {
		return rowOutcome{kind: outcomeFailed, reason: err.Error()}
	}

	if allAbsent(row) {
		return rowOutcome{kind: outcomeStop}
	}

	if isBlank(cellAt(row, colTitle)) || isBlank(cellAt(row, colEmployer)) {
		return rowOutcome{kind: outcomeSkipped, reason: MsgMissingRequired}
	}

	return rowOutcome{kind: outcomeEmitted, record: buildRecord(row)}
}

// buildRecord applies the column table and derives the dedupe hash.
func buildRecord(row []Cell) JobRecord {
	rec := JobRecord{WithPay: true}
	for _, col := range Columns {
		col.assign(&rec, cellAt(row, col.Index))
	}

	rec.DedupeHash = DedupeHash(
		cellText(cellAt(row, colEmployer)),
		cellText(cellAt(row, colTitle)),
		cellText(cellAt(row, colCity)),
	)
	return rec
}

func allAbsent(row []Cell) bool {
	for _, c := range row {
		if !isAbsent(c) {
			return false
		}
	}
	return true
}
