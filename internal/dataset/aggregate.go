package dataset

import (
	apperrors "wbdcli/internal/errors"
)

// Mode selects how per-row deltas are combined into the aggregate score.
type Mode string

const (
	// ModeMean averages the present deltas.
	ModeMean Mode = "mean"
	// ModeSum adds the present deltas.
	ModeSum Mode = "sum"
)

// ParseMode validates an aggregation mode string. Anything other than mean
// or sum is a fatal configuration error.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeMean, ModeSum:
		return Mode(s), nil
	default:
		return "", apperrors.NewValidationError("aggregation mode must be mean or sum", apperrors.ErrInvalidMode).
			WithContext("mode", s)
	}
}

// Aggregate reduces one row's delta values to a single score. Absent entries
// are excluded entirely: a mean is taken over the present values only, so
// missing deltas never drag it toward zero. An all-absent row aggregates to
// absent. The mode must have been validated by ParseMode.
func Aggregate(values []Value, mode Mode) Value {
	var sum float64
	var count int
	for _, v := range values {
		if !v.Valid {
			continue
		}
		sum += v.Float64
		count++
	}
	if count == 0 {
		return None()
	}

	if mode == ModeSum {
		return Some(sum)
	}
	return Some(sum / float64(count))
}
