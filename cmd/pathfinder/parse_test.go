package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/pathfinder/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves rows (1-based sheet row -> cell values from column A)
// to a temp xlsx file.
func writeWorkbook(t *testing.T, sheet string, rows map[int][]any) string {
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

	path := filepath.Join(t.TempDir(), "jobs.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func postingRow(title, employer, city string) []any {
	row := make([]any, 15)
	row[1] = title
	row[3] = employer
	row[14] = city
	return row
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { parseJSON = false })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func sampleWorkbook(t *testing.T) string {
	return writeWorkbook(t, ingest.SheetName, map[int][]any{
		1: {"Pathfinder job postings"},
		2: {"#", "Title", "Posting date", "Employer"},
		3: postingRow("Data Analyst", "Acme", "Toronto"),
		4: postingRow("", "Acme", "Toronto"),
	})
}

func TestParseCommand_Summary(t *testing.T) {
	out, err := execute(t, "parse", sampleWorkbook(t))
	require.NoError(t, err)

	assert.Contains(t, out, "1 postings parsed, 1 rows rejected")
	assert.Contains(t, out, "Data Analyst")
	assert.Contains(t, out, ingest.DedupeHash("Acme", "Data Analyst", "Toronto")[:12])
	assert.Contains(t, out, ingest.MsgMissingRequired)
}

func TestParseCommand_JSON(t *testing.T) {
	out, err := execute(t, "parse", "--json", sampleWorkbook(t))
	require.NoError(t, err)

	var batch ingest.Batch
	require.NoError(t, json.Unmarshal([]byte(out), &batch))
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "Data Analyst", batch.Records[0].Title)
	assert.Len(t, batch.Errors, 1)
}

func TestParseCommand_Errors(t *testing.T) {
	t.Run("missing Main sheet", func(t *testing.T) {
		path := writeWorkbook(t, "Jobs", map[int][]any{3: postingRow("Data Analyst", "Acme", "Toronto")})
		_, err := execute(t, "parse", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "XLS001")
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))
		_, err := execute(t, "parse", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "XLS002")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "parse", filepath.Join(t.TempDir(), "absent.xlsx"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read workbook")
	})

	t.Run("no argument", func(t *testing.T) {
		_, err := execute(t, "parse")
		require.Error(t, err)
	})
}

func TestColumnsCommand(t *testing.T) {
	out, err := execute(t, "columns")
	require.NoError(t, err)

	assert.Contains(t, out, `Sheet "Main"`)
	assert.Regexp(t, `(?m)^B\s+title\s+required text$`, out)
	assert.Regexp(t, `(?m)^J\s+with_pay\s+yes/no$`, out)
	assert.Regexp(t, `(?m)^AA\s+employer_notes\s+text$`, out)
}
