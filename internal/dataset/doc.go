// Package dataset implements the join-and-derive core of the dataset
// builder: matching guide rows to indicator time series by country and year,
// computing directional year-over-year deltas, and aggregating the available
// deltas into a single expected-changes score.
//
// Missing data is the expected case for sparse cross-country panels, so at
// every stage it is carried as an explicit absent Value rather than an error
// or a sentinel number:
//
//   - a delta is absent when either the current or the prior year's
//     observation is missing;
//   - the aggregate is absent when a row has no present deltas at all;
//   - a mean is taken over present deltas only, so absences never drag it
//     toward zero.
//
// The engine's inputs (indicator source and mapping table) are read-only
// after construction, which is what makes the bounded-parallel AugmentAll
// safe without locking.
package dataset
