// Package kernel implements the stateful recurrence indicators: adaptive
// filters, trend-following state machines and multi-stage smoothers whose
// output at step i depends on their own prior output.
//
// Every kernel offers two execution paths. The optimized path precomputes
// coefficient arrays, keeps rolling aggregates incremental and reads bounded
// history through ring buffers; the reference path is the straightforward
// per-bar loop. For identical inputs and parameters the two paths agree
// within an absolute tolerance of 1e-8 (1e-10 for the single-stage filters).
//
// Invalid parameters are clamped or replaced by defaults, never rejected.
// Inputs shorter than a kernel's warm-up requirement produce an all-NaN
// result. Errors are reserved for programming mistakes such as mismatched
// input lengths.
package kernel

import "ta-kernels/internal/series"

// Path selects the execution path for a kernel evaluation. It is decided
// once per call, never toggled mid-computation.
type Path uint8

const (
	PathOptimized Path = iota
	PathReference
)

func (p Path) String() string {
	if p == PathReference {
		return "reference"
	}
	return "optimized"
}

// ParsePath maps a config string to a Path. Anything other than
// "reference" selects the optimized path.
func ParsePath(s string) Path {
	if s == "reference" {
		return PathReference
	}
	return PathOptimized
}

// Direction is the two-state trend regime carried by the state-machine
// kernels (Supertrend, QQE, PSAR, HiLo).
type Direction int8

const (
	Long  Direction = 1
	Short Direction = -1
)

// Output is one named series of a kernel result.
type Output struct {
	Name string
	S    *series.Series
}

// Result is the set of named output series produced by one evaluation,
// all aligned index-for-index with the input.
type Result struct {
	Name    string // e.g. "SUPERT_7_3.0"
	Outputs []Output
}

// Get returns the output with the given name, or nil.
func (r Result) Get(name string) *series.Series {
	for _, o := range r.Outputs {
		if o.Name == name {
			return o.S
		}
	}
	return nil
}

// Primary returns the first (main) output series.
func (r Result) Primary() *series.Series {
	if len(r.Outputs) == 0 {
		return nil
	}
	return r.Outputs[0].S
}

// PostProcess applies the uniform offset shift and fill policy to every
// output, returning a new Result.
func (r Result) PostProcess(offset int, f series.Fill) Result {
	if offset == 0 && f.Method == series.FillNone {
		return r
	}
	out := Result{Name: r.Name, Outputs: make([]Output, len(r.Outputs))}
	for i, o := range r.Outputs {
		s := o.S
		if offset != 0 {
			s = s.Shift(offset)
		}
		if f.Method != series.FillNone {
			s = s.FillNaN(f)
		}
		out.Outputs[i] = Output{Name: o.Name, S: s}
	}
	return out
}

// Inputs carries the aligned price series a kernel may consume. Kernels
// that need only a close series ignore High and Low.
type Inputs struct {
	High  *series.Series
	Low   *series.Series
	Close *series.Series
}

func single(name string, s *series.Series) Result {
	return Result{Name: name, Outputs: []Output{{Name: name, S: s}}}
}
