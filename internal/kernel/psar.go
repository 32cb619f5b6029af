package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// PSARParams configures the Parabolic Stop-and-Reverse.
type PSARParams struct {
	Af0   float64 // initial acceleration factor, default 0.02
	Af    float64 // acceleration step per new extreme, default 0.02
	MaxAf float64 // acceleration cap, default 0.2
}

func (p PSARParams) normalize() PSARParams {
	p.Af0 = posFloat(p.Af0, 0.02)
	p.Af = posFloat(p.Af, 0.02)
	p.MaxAf = posFloat(p.MaxAf, 0.2)
	return p
}

// PSARWarmup returns the leading undefined run of the long/short lines:
// one bar. The initial direction needs the first two bars' ranges.
func PSARWarmup(p PSARParams) int { return 1 }

// PSAR computes Welles Wilder's Parabolic SAR. The initial direction comes
// from the relative magnitude of the first two bars' moves; the SAR
// accelerates toward the extreme point by an increasing factor, is never
// allowed inside the prior two bars' range, and on reversal jumps to the
// extreme point while the factor resets to Af0. Outputs: combined SAR,
// long line, short line, acceleration factor, reversal flags.
func PSAR(high, low *series.Series, p PSARParams, path Path) Result {
	p = p.normalize()
	suffix := ftoa(p.Af0) + "_" + ftoa(p.MaxAf)
	name := "PSAR_" + suffix
	m := high.Len()
	outputs := func(sar, long, short, af, rev []float64) Result {
		return Result{Name: name, Outputs: []Output{
			{Name: name, S: high.Derive(sar)},
			{Name: "PSARl_" + suffix, S: high.Derive(long)},
			{Name: "PSARs_" + suffix, S: high.Derive(short)},
			{Name: "PSARaf_" + suffix, S: high.Derive(af)},
			{Name: "PSARr_" + suffix, S: high.Derive(rev)},
		}}
	}
	if m < 2 {
		return outputs(series.NaNs(m), series.NaNs(m), series.NaNs(m), series.NaNs(m), make([]float64, m))
	}
	if path == PathReference {
		return outputs(psarReference(high.Values(), low.Values(), p))
	}
	return outputs(psarOptimized(high.Values(), low.Values(), p))
}

// psarState is the reference path's explicit state machine.
type psarState struct {
	dir Direction
	sar float64 // current stop level
	ep  float64 // extreme point since the last reversal
	af  float64 // current acceleration factor
	p   PSARParams
}

// step advances one bar and reports whether a reversal fired.
func (s *psarState) step(high, low []float64, i int) bool {
	next := s.sar + s.af*(s.ep-s.sar)
	var reverse bool

	if s.dir == Short {
		reverse = high[i] > next
		if low[i] < s.ep {
			s.ep = low[i]
			s.af = math.Min(s.af+s.p.Af, s.p.MaxAf)
		}
		// SAR may not enter the prior two bars' range.
		if i >= 2 {
			next = math.Max(high[i-1], math.Max(high[i-2], next))
		} else {
			next = math.Max(high[i-1], next)
		}
	} else {
		reverse = low[i] < next
		if high[i] > s.ep {
			s.ep = high[i]
			s.af = math.Min(s.af+s.p.Af, s.p.MaxAf)
		}
		if i >= 2 {
			next = math.Min(low[i-1], math.Min(low[i-2], next))
		} else {
			next = math.Min(low[i-1], next)
		}
	}

	if reverse {
		next = s.ep
		s.af = s.p.Af0
		s.dir = -s.dir
		if s.dir == Short {
			s.ep = low[i]
		} else {
			s.ep = high[i]
		}
	}
	s.sar = next
	return reverse
}

func psarReference(high, low []float64, p PSARParams) (sar, long, short, af, rev []float64) {
	m := len(high)
	sar = nans(m)
	long = nans(m)
	short = nans(m)
	af = nans(m)
	rev = make([]float64, m)

	st := psarState{p: p, af: p.Af0}
	// Direction of the larger opening move wins.
	if low[1]-low[0] > high[0]-high[1] {
		st.dir = Long
		st.sar = low[0]
		st.ep = high[0]
	} else {
		st.dir = Short
		st.sar = high[0]
		st.ep = low[0]
	}
	sar[0] = st.sar
	af[0] = p.Af0

	for i := 1; i < m; i++ {
		if st.step(high, low, i) {
			rev[i] = 1
		}
		sar[i] = st.sar
		af[i] = st.af
		if st.dir == Short {
			short[i] = st.sar
		} else {
			long[i] = st.sar
		}
	}
	return sar, long, short, af, rev
}

// psarOptimized is the same recurrence in a tight loop over locals.
func psarOptimized(high, low []float64, p PSARParams) (sar, long, short, af, rev []float64) {
	m := len(high)
	sar = nans(m)
	long = nans(m)
	short = nans(m)
	af = nans(m)
	rev = make([]float64, m)

	falling := !(low[1]-low[0] > high[0]-high[1])
	var cur, ep float64
	if falling {
		cur = high[0]
		ep = low[0]
	} else {
		cur = low[0]
		ep = high[0]
	}
	sar[0] = cur
	af[0] = p.Af0
	curAf := p.Af0

	for i := 1; i < m; i++ {
		next := cur + curAf*(ep-cur)
		var reverse bool

		if falling {
			reverse = high[i] > next
			if low[i] < ep {
				ep = low[i]
				curAf = math.Min(curAf+p.Af, p.MaxAf)
			}
			if i >= 2 {
				next = math.Max(high[i-1], math.Max(high[i-2], next))
			} else {
				next = math.Max(high[i-1], next)
			}
		} else {
			reverse = low[i] < next
			if high[i] > ep {
				ep = high[i]
				curAf = math.Min(curAf+p.Af, p.MaxAf)
			}
			if i >= 2 {
				next = math.Min(low[i-1], math.Min(low[i-2], next))
			} else {
				next = math.Min(low[i-1], next)
			}
		}

		if reverse {
			next = ep
			curAf = p.Af0
			falling = !falling
			if falling {
				ep = low[i]
			} else {
				ep = high[i]
			}
			rev[i] = 1
		}

		cur = next
		sar[i] = cur
		af[i] = curAf
		if falling {
			short[i] = cur
		} else {
			long[i] = cur
		}
	}
	return sar, long, short, af, rev
}
