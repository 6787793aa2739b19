package guide

import (
	"strings"

	apperrors "wbdcli/internal/errors"
)

// Fallback header names tried, in order, when no explicit column name is
// supplied. Matching is done on normalized headers.
var (
	countryFallbacks = []string{"country code", "country", "iso3", "iso3 code", "economy"}
	yearFallbacks    = []string{"year", "date"}
)

// normalizeHeader lowercases, trims and treats underscores as spaces so
// "Country_Code", "country code" and " COUNTRY CODE " all match.
func normalizeHeader(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", " ")
}

// resolveColumn finds the 1-based column index for either an explicitly
// named header or the first matching fallback. An explicit name that is not
// in the sheet is an error; so is exhausting the fallbacks. This is a pure
// function of the header map, nothing else in the sheet is inspected.
func resolveColumn(headers map[string]int, preferred string, fallbacks []string) (int, error) {
	if preferred != "" {
		if idx, ok := headers[normalizeHeader(preferred)]; ok {
			return idx, nil
		}
		return 0, apperrors.NewLoadError("column not found in guide sheet", nil).
			WithContext("column", preferred)
	}
	for _, name := range fallbacks {
		if idx, ok := headers[normalizeHeader(name)]; ok {
			return idx, nil
		}
	}
	return 0, apperrors.NewLoadError("no matching column in guide sheet", nil).
		WithContext("tried", strings.Join(fallbacks, ", "))
}
