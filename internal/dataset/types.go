package dataset

// Value is an optional float64. Absent indicator points, deltas with missing
// history and all-absent aggregates are all represented this way so that
// "absent" stays distinguishable from "computed zero" at every layer.
type Value struct {
	Float64 float64
	Valid   bool
}

// Some returns a present Value.
func Some(v float64) Value {
	return Value{Float64: v, Valid: true}
}

// None returns an absent Value.
func None() Value {
	return Value{}
}

// GuideRow is one observation request from the guide table: which country
// and which year to derive deltas for.
type GuideRow struct {
	Country string
	Year    int
	// Valid is false when the guide row's country or year could not be
	// resolved. Such rows still produce a DerivedRow, with every value
	// absent, so output row count always matches input row count.
	Valid bool
}

// DerivedRow holds the computed values for one guide row: one delta per
// mapping entry, in mapping order, plus the aggregate score.
type DerivedRow struct {
	Deltas    []Value
	Aggregate Value
}

// IndicatorSource is the read-only lookup surface the engine needs from the
// indicator store.
type IndicatorSource interface {
	// Lookup returns the value for (country, indicator code, year), with
	// false when the observation is not in the archive.
	Lookup(country, code string, year int) (float64, bool)
	// HasIndicator reports whether any observation exists for the code.
	HasIndicator(code string) bool
}
