// Package guide reads the sample-guide workbook, resolves its country and
// year columns, and writes the derived delta columns back into it.
package guide

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"wbdcli/internal/dataset"
	apperrors "wbdcli/internal/errors"
	"wbdcli/internal/mapping"
)

// AggregateColumn is the output header for the per-row aggregate score.
const AggregateColumn = "gov_expected_changes"

// Options configures how the guide workbook is opened. Zero values mean
// "first sheet" and "auto-detect columns".
type Options struct {
	Sheet         string
	CountryColumn string
	YearColumn    string
	Logger        *slog.Logger
}

// Workbook is an open guide workbook with its key columns resolved and its
// data rows parsed.
type Workbook struct {
	f          *excelize.File
	sheet      string
	headers    map[string]int // normalized header -> 1-based column
	lastCol    int
	countryCol int
	yearCol    int
	rows       []dataset.GuideRow
	logger     *slog.Logger
}

// Open loads the workbook, picks the sheet, builds the header index from row
// 1 and parses every data row into a GuideRow. Rows whose country or year
// cannot be parsed are kept with Valid=false so the row count is preserved.
func Open(path string, opts Options) (*Workbook, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open guide workbook", err).WithContext("path", path)
	}

	sheet := opts.Sheet
	if sheet == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			f.Close()
			return nil, apperrors.NewLoadError("guide workbook has no sheets", nil)
		}
		sheet = list[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		f.Close()
		return nil, apperrors.NewLoadError("guide sheet not found", err).WithContext("sheet", sheet)
	}

	rawRows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, apperrors.NewLoadError("failed to read guide sheet", err).WithContext("sheet", sheet)
	}
	if len(rawRows) == 0 {
		f.Close()
		return nil, apperrors.NewLoadError("guide sheet has no header row", nil).WithContext("sheet", sheet)
	}

	headers := make(map[string]int)
	for i, cell := range rawRows[0] {
		key := normalizeHeader(cell)
		if key == "" {
			continue
		}
		if _, exists := headers[key]; !exists {
			headers[key] = i + 1
		}
	}

	lastCol := 0
	for _, row := range rawRows {
		if len(row) > lastCol {
			lastCol = len(row)
		}
	}

	countryCol, err := resolveColumn(headers, opts.CountryColumn, countryFallbacks)
	if err != nil {
		f.Close()
		return nil, err
	}
	yearCol, err := resolveColumn(headers, opts.YearColumn, yearFallbacks)
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &Workbook{
		f:          f,
		sheet:      sheet,
		headers:    headers,
		lastCol:    lastCol,
		countryCol: countryCol,
		yearCol:    yearCol,
		logger:     logger,
	}
	w.rows = w.parseRows(rawRows)

	logger.Info("guide workbook loaded",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(w.rows)),
		slog.Int("country_col", countryCol),
		slog.Int("year_col", yearCol))

	return w, nil
}

// Close releases the underlying workbook.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Rows returns the parsed guide rows in sheet order.
func (w *Workbook) Rows() []dataset.GuideRow {
	return w.rows
}

func (w *Workbook) parseRows(rawRows [][]string) []dataset.GuideRow {
	rows := make([]dataset.GuideRow, 0, len(rawRows)-1)
	for _, raw := range rawRows[1:] {
		country := parseCountry(cellAt(raw, w.countryCol))
		year, yearOK := parseYear(cellAt(raw, w.yearCol))
		rows = append(rows, dataset.GuideRow{
			Country: country,
			Year:    year,
			Valid:   country != "" && yearOK,
		})
	}
	return rows
}

// Apply writes the derived values into the sheet: one column per mapping
// entry in mapping order, then the aggregate column. Existing columns with
// matching headers are reused in place; new ones are appended after the last
// used column. Absent values clear the target cell.
func (w *Workbook) Apply(table *mapping.Table, derived []dataset.DerivedRow) error {
	if len(derived) != len(w.rows) {
		return fmt.Errorf("derived row count %d does not match guide row count %d", len(derived), len(w.rows))
	}

	next := w.lastCol + 1
	targetCols := make([]int, table.Len())
	for i, entry := range table.Entries() {
		idx, err := w.ensureColumn(entry.DeltaColumn, &next)
		if err != nil {
			return err
		}
		targetCols[i] = idx
	}
	aggCol, err := w.ensureColumn(AggregateColumn, &next)
	if err != nil {
		return err
	}

	for r, d := range derived {
		sheetRow := r + 2 // row 1 is the header
		for i, v := range d.Deltas {
			if err := w.setValue(targetCols[i], sheetRow, v); err != nil {
				return err
			}
		}
		if err := w.setValue(aggCol, sheetRow, d.Aggregate); err != nil {
			return err
		}
	}

	return nil
}

// ensureColumn returns the 1-based index of the named column, appending a
// new header cell when the sheet does not already have one.
func (w *Workbook) ensureColumn(name string, next *int) (int, error) {
	key := normalizeHeader(name)
	if idx, ok := w.headers[key]; ok {
		return idx, nil
	}
	idx := *next
	cell, err := excelize.CoordinatesToCellName(idx, 1)
	if err != nil {
		return 0, fmt.Errorf("resolve header cell: %w", err)
	}
	if err := w.f.SetCellValue(w.sheet, cell, name); err != nil {
		return 0, fmt.Errorf("write header %q: %w", name, err)
	}
	*next++
	w.headers[key] = idx
	return idx, nil
}

func (w *Workbook) setValue(col, row int, v dataset.Value) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("resolve cell: %w", err)
	}
	if v.Valid {
		return w.f.SetCellValue(w.sheet, cell, v.Float64)
	}
	return w.f.SetCellValue(w.sheet, cell, nil)
}

// SaveAs writes the augmented workbook to the output path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Info("augmented workbook saved", slog.String("path", path))
	return nil
}

func cellAt(row []string, col int) string {
	if col-1 >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1])
}

// parseCountry normalizes a country cell to an upper-cased trimmed code.
func parseCountry(s string) string {
	return strings.ToUpper(s)
}

// parseYear parses a year cell through float so spreadsheet values like
// "2020.0" resolve to 2020.
func parseYear(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
