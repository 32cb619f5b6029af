package series

import "math"

// FillMethod selects how undefined values are replaced after evaluation.
type FillMethod uint8

const (
	FillNone     FillMethod = iota // leave NaNs in place
	FillForward                    // propagate last defined value forward
	FillBackward                   // propagate next defined value backward
	FillConstant                   // replace with a fixed value
)

// Fill is the post-processing fill policy shared by all kernels.
type Fill struct {
	Method FillMethod
	Value  float64 // used by FillConstant
}

// Shift returns a new Series with values moved n positions toward the end
// (negative n moves toward the start). Vacated positions become NaN. The
// index is unchanged; shifting repositions values, never timestamps.
func (s *Series) Shift(n int) *Series {
	m := len(s.vals)
	if n == 0 || m == 0 {
		return s.Derive(s.Copy())
	}
	out := NaNs(m)
	if n > 0 {
		for i := n; i < m; i++ {
			out[i] = s.vals[i-n]
		}
	} else {
		for i := 0; i < m+n; i++ {
			out[i] = s.vals[i-n]
		}
	}
	return s.Derive(out)
}

// FillNaN returns a new Series with undefined values replaced per the policy.
func (s *Series) FillNaN(f Fill) *Series {
	out := s.Copy()
	switch f.Method {
	case FillForward:
		last := math.NaN()
		for i, v := range out {
			if math.IsNaN(v) {
				out[i] = last
			} else {
				last = v
			}
		}
	case FillBackward:
		next := math.NaN()
		for i := len(out) - 1; i >= 0; i-- {
			if math.IsNaN(out[i]) {
				out[i] = next
			} else {
				next = out[i]
			}
		}
	case FillConstant:
		for i, v := range out {
			if math.IsNaN(v) {
				out[i] = f.Value
			}
		}
	}
	return s.Derive(out)
}
