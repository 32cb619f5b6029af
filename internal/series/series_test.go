package series

import (
	"math"
	"testing"
)

func mustNew(t *testing.T, index []int64, vals []float64) *Series {
	t.Helper()
	s, err := New(index, vals)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_LengthMismatch(t *testing.T) {
	if _, err := New([]int64{1, 2, 3}, []float64{1.0}); err == nil {
		t.Fatal("expected error for mismatched lengths")
	}
}

func TestLeadingNaNs(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		vals []float64
		want int
	}{
		{[]float64{1, 2, 3}, 0},
		{[]float64{nan, nan, 3}, 2},
		{[]float64{nan, nan, nan}, 3},
		{[]float64{nan, 1, nan}, 1}, // only the leading run counts
		{[]float64{}, 0},
	}
	for i, c := range cases {
		idx := make([]int64, len(c.vals))
		for j := range idx {
			idx[j] = int64(j)
		}
		s := mustNew(t, idx, c.vals)
		if got := s.LeadingNaNs(); got != c.want {
			t.Errorf("case %d: LeadingNaNs()=%d, want %d", i, got, c.want)
		}
	}
}

func TestShift_Positive(t *testing.T) {
	s := mustNew(t, []int64{10, 20, 30, 40}, []float64{1, 2, 3, 4})
	out := s.Shift(2)

	if !math.IsNaN(out.At(0)) || !math.IsNaN(out.At(1)) {
		t.Error("vacated head positions must be NaN")
	}
	if out.At(2) != 1 || out.At(3) != 2 {
		t.Errorf("values not shifted: got %v, %v", out.At(2), out.At(3))
	}
	// Index stays put; only values move.
	if out.TimeAt(0) != 10 || out.TimeAt(3) != 40 {
		t.Error("index must not shift")
	}
}

func TestShift_Negative(t *testing.T) {
	s := mustNew(t, []int64{10, 20, 30}, []float64{1, 2, 3})
	out := s.Shift(-1)

	if out.At(0) != 2 || out.At(1) != 3 {
		t.Errorf("got %v, %v", out.At(0), out.At(1))
	}
	if !math.IsNaN(out.At(2)) {
		t.Error("vacated tail position must be NaN")
	}
}

func TestShift_Zero_Copies(t *testing.T) {
	s := mustNew(t, []int64{1, 2}, []float64{5, 6})
	out := s.Shift(0)
	out.Values()[0] = 99
	if s.At(0) != 5 {
		t.Error("Shift(0) must not alias the source values")
	}
}

func TestFillNaN(t *testing.T) {
	nan := math.NaN()
	idx := []int64{1, 2, 3, 4, 5}

	s := mustNew(t, idx, []float64{nan, 1, nan, 2, nan})

	fwd := s.FillNaN(Fill{Method: FillForward}).Values()
	if !math.IsNaN(fwd[0]) {
		t.Error("forward fill has nothing to propagate into the head")
	}
	if fwd[2] != 1 || fwd[4] != 2 {
		t.Errorf("forward fill: got %v", fwd)
	}

	bwd := s.FillNaN(Fill{Method: FillBackward}).Values()
	if bwd[0] != 1 || bwd[2] != 2 {
		t.Errorf("backward fill: got %v", bwd)
	}
	if !math.IsNaN(bwd[4]) {
		t.Error("backward fill has nothing to propagate into the tail")
	}

	con := s.FillNaN(Fill{Method: FillConstant, Value: -1}).Values()
	for i, v := range con {
		if math.IsNaN(v) {
			t.Errorf("constant fill left NaN at %d", i)
		}
	}
	if con[0] != -1 || con[1] != 1 {
		t.Errorf("constant fill: got %v", con)
	}

	// FillNone returns an equal copy.
	none := s.FillNaN(Fill{Method: FillNone}).Values()
	if !math.IsNaN(none[0]) || none[1] != 1 {
		t.Errorf("none fill: got %v", none)
	}
}

func TestDefined(t *testing.T) {
	s := mustNew(t, []int64{1, 2, 3}, []float64{math.NaN(), 1, math.NaN()})
	if s.Defined(0) || !s.Defined(1) || s.Defined(2) {
		t.Errorf("Defined: got %v %v %v, want false true false",
			s.Defined(0), s.Defined(1), s.Defined(2))
	}
}

func TestDerive_SharesIndex(t *testing.T) {
	s := mustNew(t, []int64{1, 2, 3}, []float64{1, 2, 3})
	d := s.Derive([]float64{4, 5, 6})
	if d.TimeAt(1) != 2 {
		t.Error("derived series must carry the source index")
	}
	defer func() {
		if recover() == nil {
			t.Error("Derive with wrong length must panic")
		}
	}()
	s.Derive([]float64{1})
}
