package worldbank

// pointKey identifies a single observation in the panel.
type pointKey struct {
	country string
	year    int
	code    string
}

// Store holds the World Bank indicator panel in memory. It is built once by
// LoadArchive and read-only afterwards, so it may be shared across goroutines
// without locking.
type Store struct {
	values     map[pointKey]float64
	indicators map[string]struct{}
}

// Lookup returns the value for (country, indicator code, year). The second
// return is false when the observation is not in the archive, which is the
// normal case for sparse panels.
func (s *Store) Lookup(country, code string, year int) (float64, bool) {
	v, ok := s.values[pointKey{country: country, year: year, code: code}]
	return v, ok
}

// HasIndicator reports whether the archive contains any observation at all
// for the given indicator code, for any country or year.
func (s *Store) HasIndicator(code string) bool {
	_, ok := s.indicators[code]
	return ok
}

// Len returns the number of observations loaded.
func (s *Store) Len() int {
	return len(s.values)
}
