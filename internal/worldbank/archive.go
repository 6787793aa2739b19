package worldbank

import (
	"archive/zip"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"

	apperrors "wbdcli/internal/errors"
)

// LoadArchive reads a World Bank bulk-download zip and builds the indicator
// store from the data CSV inside it. Metadata CSVs shipped alongside the data
// file are ignored.
func LoadArchive(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open archive", err).WithContext("path", path)
	}
	defer zr.Close()

	dataFile, err := findDataFile(&zr.Reader)
	if err != nil {
		return nil, err
	}

	logger.Info("loading indicator archive",
		slog.String("archive", path),
		slog.String("data_file", dataFile.Name))

	rc, err := dataFile.Open()
	if err != nil {
		return nil, apperrors.NewLoadError("failed to open data file in archive", err).
			WithContext("data_file", dataFile.Name)
	}
	defer rc.Close()

	store, err := loadValues(rc)
	if err != nil {
		return nil, err
	}

	logger.Info("indicator archive loaded",
		slog.Int("observations", store.Len()),
		slog.Int("indicators", len(store.indicators)))

	return store, nil
}

// findDataFile picks the data CSV out of the archive. World Bank bulk
// downloads contain one API_*.csv data file plus Metadata_*.csv companions.
func findDataFile(zr *zip.Reader) (*zip.File, error) {
	var candidates []*zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil, apperrors.NewLoadError("no csv file found in archive", nil)
	}

	for _, f := range candidates {
		name := strings.ToLower(f.Name)
		if strings.Contains(name, "metadata") {
			continue
		}
		if strings.Contains(name, "api_") || strings.Contains(name, "data") {
			return f, nil
		}
	}
	return candidates[0], nil
}

// loadValues parses the wide-format data CSV: one row per (country,
// indicator) pair, one column per year. Blank and unparseable cells are
// skipped, not errors.
func loadValues(r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, apperrors.NewLoadError("failed to read csv header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	countryIdx, indicatorIdx := -1, -1
	type yearCol struct {
		idx  int
		year int
	}
	var yearCols []yearCol

	for i, col := range header {
		switch normalizeHeader(col) {
		case "country code":
			if countryIdx < 0 {
				countryIdx = i
			}
		case "indicator code":
			if indicatorIdx < 0 {
				indicatorIdx = i
			}
		default:
			if y, ok := parseYearHeader(col); ok {
				yearCols = append(yearCols, yearCol{idx: i, year: y})
			}
		}
	}

	if countryIdx < 0 || indicatorIdx < 0 {
		return nil, apperrors.NewLoadError("country code / indicator code columns not found", nil).
			WithContext("header", header)
	}
	if len(yearCols) == 0 {
		return nil, apperrors.NewLoadError("no year columns found", nil).WithContext("header", header)
	}

	store := &Store{
		values:     make(map[pointKey]float64),
		indicators: make(map[string]struct{}),
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewLoadError("failed to read csv record", err)
		}

		country := fieldAt(record, countryIdx)
		indicator := fieldAt(record, indicatorIdx)
		if country == "" || indicator == "" {
			continue
		}

		for _, yc := range yearCols {
			v, ok := parseFloat(fieldAt(record, yc.idx))
			if !ok {
				continue
			}
			store.values[pointKey{country: country, year: yc.year, code: indicator}] = v
			store.indicators[indicator] = struct{}{}
		}
	}

	return store, nil
}

func fieldAt(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// normalizeHeader lowercases and treats underscores as spaces so both
// "Country Code" and "country_code" match.
func normalizeHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
}

// parseYearHeader accepts all-digit headers like "1960" or "2023".
func parseYearHeader(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// parseFloat parses a data cell; blank or non-numeric cells count as absent.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
