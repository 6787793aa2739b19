package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"wbdcli/internal/mapping"
)

// Engine orchestrates delta computation and aggregation over guide rows.
// The indicator source and mapping table are read-only after construction,
// so one Engine may augment rows from multiple goroutines.
type Engine struct {
	source  IndicatorSource
	table   *mapping.Table
	mode    Mode
	logger  *slog.Logger
	workers int
}

// NewEngine builds an engine for one dataset run. The mode string is
// validated here so an unsupported mode aborts before any row is processed.
func NewEngine(source IndicatorSource, table *mapping.Table, mode string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	parsed, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		source:  source,
		table:   table,
		mode:    parsed,
		logger:  logger,
		workers: 4,
	}
	e.warnMissingIndicators()
	return e, nil
}

// SetWorkers sets the number of concurrent row workers used by AugmentAll.
func (e *Engine) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// warnMissingIndicators flags mapping entries whose indicator code never
// occurs in the archive. That produces an all-empty delta column, which is
// more likely a mapping typo than real sparsity, but it is not fatal.
func (e *Engine) warnMissingIndicators() {
	for _, entry := range e.table.Entries() {
		if !e.source.HasIndicator(entry.IndicatorCode) {
			e.logger.Warn("indicator code absent from archive, column will be empty",
				slog.String("delta_col", entry.DeltaColumn),
				slog.String("indicator_code", entry.IndicatorCode))
		}
	}
}

// ComputeDelta computes the directional year-over-year difference for one
// mapping entry: direction * (value(year) - value(year-1)). The result is
// absent when either year's value is missing; missing history is expected
// and never an error.
func (e *Engine) ComputeDelta(country string, year int, entry mapping.Entry) Value {
	curr, ok := e.source.Lookup(country, entry.IndicatorCode, year)
	if !ok {
		return None()
	}
	prev, ok := e.source.Lookup(country, entry.IndicatorCode, year-1)
	if !ok {
		return None()
	}
	return Some(entry.Direction * (curr - prev))
}

// Augment derives all delta values and the aggregate for one guide row. An
// invalid row (unresolvable country or year) yields all-absent values rather
// than an error, so every input row produces exactly one output row.
func (e *Engine) Augment(row GuideRow) DerivedRow {
	deltas := make([]Value, e.table.Len())
	if row.Valid {
		for i, entry := range e.table.Entries() {
			deltas[i] = e.ComputeDelta(row.Country, row.Year, entry)
		}
	}
	return DerivedRow{
		Deltas:    deltas,
		Aggregate: Aggregate(deltas, e.mode),
	}
}

// AugmentAll processes guide rows with a bounded worker pool. Results are
// written into an index-addressed slice so output order always matches input
// order regardless of scheduling.
func (e *Engine) AugmentAll(ctx context.Context, rows []GuideRow) ([]DerivedRow, error) {
	e.logger.Info("augmenting guide rows",
		slog.Int("rows", len(rows)),
		slog.Int("mapping_entries", e.table.Len()),
		slog.String("mode", string(e.mode)),
		slog.Int("workers", e.workers))

	out := make([]DerivedRow, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			out[i] = e.Augment(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("augment rows: %w", err)
	}

	return out, nil
}
