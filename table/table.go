// Package table reads carrier spreadsheets and delimited exports into a
// header plus string rows, and resolves columns by (normalized) name.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSchemaMismatch is wrapped by every SchemaError.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaError lists the expected columns a file does not carry.
type SchemaError struct {
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: missing columns %s", ErrSchemaMismatch, e.File, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

/* ──────────── helpers ──────────── */

var spaceRE = regexp.MustCompile(`\s+`)

// Norm trims, lowercases and collapses inner whitespace of a header cell.
func Norm(s string) string {
	return spaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// Table is a header and its data rows. Rows may be shorter than the header
// (spreadsheets drop trailing empty cells).
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ColIdx returns the index of the first header matching any key, or -1.
func (t *Table) ColIdx(keys ...string) int {
	for _, k := range keys {
		k = Norm(k)
		for i, h := range t.Header {
			if Norm(h) == k {
				return i
			}
		}
	}
	return -1
}

// Select resolves cols in order. All missing names are reported together.
func (t *Table) Select(cols []string) ([]int, error) {
	idx := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		idx[i] = t.ColIdx(c)
		if idx[i] == -1 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{File: t.Name, Missing: missing}
	}
	return idx, nil
}

// Pick returns a cell, or "" when the row is too short.
func Pick(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

// Column extracts one column as a slice.
func (t *Table) Column(idx int) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = Pick(r, idx)
	}
	return out
}

/* ──────────── readers ──────────── */

// IsSpreadsheet reports whether a file name should be opened as a workbook.
func IsSpreadsheet(path string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(path)), ".xls")
}

// Read loads a table, choosing the reader from the file name.
func Read(path string) (*Table, error) {
	if IsSpreadsheet(path) {
		return ReadSpreadsheet(path)
	}
	return ReadCSV(path)
}

// ReadSpreadsheet loads the first sheet of a workbook. Raw cell values are
// used so number formats (thousand separators, rounding) do not leak in.
func ReadSpreadsheet(path string) (*Table, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer x.Close()

	sheet := x.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets found in %s", path)
	}
	rows, err := x.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header found in %s", path)
	}
	return &Table{Name: filepath.Base(path), Header: rows[0], Rows: rows[1:]}, nil
}

// ReadCSV loads a comma separated file with a header line.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Parse reads CSV from r. Blank lines are skipped and ragged rows allowed.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("no header found")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
