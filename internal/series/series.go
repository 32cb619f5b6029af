// Package series provides the ordered, timestamp-indexed float64 container
// shared by every kernel, plus the offset/fill post-processing applied
// uniformly after kernel evaluation.
//
// A Series never re-validates its index: timestamps are strictly increasing
// with no duplicates, and that invariant is owned by the caller. Undefined
// values (warm-up bars, gaps after shifting) are NaN.
package series

import (
	"errors"
	"math"
)

// Series is an ordered sequence of (timestamp, value) pairs.
// Timestamps are unix milliseconds.
type Series struct {
	index []int64
	vals  []float64
}

// New builds a Series over the given index and values. The two slices must
// have equal length; a mismatch is a programming error, not a data error.
// The slices are NOT copied; the caller hands over ownership.
func New(index []int64, vals []float64) (*Series, error) {
	if len(index) != len(vals) {
		return nil, errors.New("series: index and values length mismatch")
	}
	return &Series{index: index, vals: vals}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int { return len(s.vals) }

// At returns the value at position i.
func (s *Series) At(i int) float64 { return s.vals[i] }

// TimeAt returns the unix-milli timestamp at position i.
func (s *Series) TimeAt(i int) int64 { return s.index[i] }

// Values returns the backing value slice. Callers must treat it as read-only;
// use Copy for a mutable view.
func (s *Series) Values() []float64 { return s.vals }

// Index returns the backing index slice. Read-only by convention.
func (s *Series) Index() []int64 { return s.index }

// Copy returns a fresh copy of the values.
func (s *Series) Copy() []float64 {
	out := make([]float64, len(s.vals))
	copy(out, s.vals)
	return out
}

// Derive builds a new Series over this Series' index with the given values.
// The index slice is shared between parent and child; every kernel output is
// aligned index-for-index with its input, so sharing is safe and cheap.
// Panics if the lengths differ (programming error).
func (s *Series) Derive(vals []float64) *Series {
	if len(vals) != len(s.index) {
		panic("series: derived values do not match index length")
	}
	return &Series{index: s.index, vals: vals}
}

// Defined reports whether the value at position i is defined (non-NaN).
func (s *Series) Defined(i int) bool { return !math.IsNaN(s.vals[i]) }

// LeadingNaNs returns the length of the leading undefined run.
func (s *Series) LeadingNaNs() int {
	for i, v := range s.vals {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(s.vals)
}

// NaNs returns a slice of n NaN values, the canonical all-undefined result
// for inputs shorter than a kernel's warm-up requirement.
func NaNs(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
