// Package mapping loads the delta-column mapping table: which World Bank
// indicator feeds each derived column, and whether an increase or a decrease
// in the raw indicator counts as improvement.
package mapping

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "wbdcli/internal/errors"
)

// Entry binds one output column to one indicator code. Direction is +1 or -1
// and multiplies the raw year-over-year difference.
type Entry struct {
	DeltaColumn   string
	IndicatorCode string
	Direction     float64
}

// Table is an ordered, validated list of entries. Input order is preserved
// and determines output column order. Immutable after Load.
type Table struct {
	entries []Entry
}

// Entries returns the entries in input order. Callers must not modify the
// returned slice.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// LoadFile loads and validates a mapping CSV from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open mapping file", err).WithContext("path", path)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a mapping CSV with header delta_col,indicator_code,direction.
// Rows missing both delta_col and indicator_code are skipped; a row with
// exactly one of them blank is rejected. Direction defaults to +1.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.NewLoadError("failed to read mapping header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	deltaIdx, codeIdx, dirIdx := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "delta_col":
			deltaIdx = i
		case "indicator_code":
			codeIdx = i
		case "direction":
			dirIdx = i
		}
	}
	if deltaIdx < 0 || codeIdx < 0 {
		return nil, apperrors.NewLoadError("mapping header must contain delta_col and indicator_code", nil).
			WithContext("header", header)
	}

	table := &Table{}
	seen := make(map[string]struct{})
	line := 1

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewLoadError("failed to read mapping record", err)
		}
		line++

		deltaCol := fieldAt(record, deltaIdx)
		code := fieldAt(record, codeIdx)
		if deltaCol == "" && code == "" {
			continue
		}
		if deltaCol == "" || code == "" {
			return nil, apperrors.NewValidationError("mapping row needs both delta_col and indicator_code", nil).
				WithContext("line", line)
		}

		if _, dup := seen[deltaCol]; dup {
			return nil, apperrors.NewValidationError("mapping assigns the same delta column twice", apperrors.ErrDuplicateColumn).
				WithContext("delta_col", deltaCol).
				WithContext("line", line)
		}
		seen[deltaCol] = struct{}{}

		direction, err := parseDirection(fieldAt(record, dirIdx))
		if err != nil {
			return nil, apperrors.NewValidationError("mapping direction must be +1 or -1", err).
				WithContext("delta_col", deltaCol).
				WithContext("line", line)
		}

		table.entries = append(table.entries, Entry{
			DeltaColumn:   deltaCol,
			IndicatorCode: code,
			Direction:     direction,
		})
	}

	return table, nil
}

// parseDirection accepts an empty cell (default +1) or any numeric spelling
// of exactly +1 or -1, such as "1", "-1", "+1" or "1.0".
func parseDirection(s string) (float64, error) {
	if s == "" {
		return 1, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.ErrInvalidDirection
	}
	if v != 1 && v != -1 {
		return 0, apperrors.ErrInvalidDirection
	}
	return v, nil
}

func fieldAt(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
