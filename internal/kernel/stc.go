package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// STCParams configures the Schaff Trend Cycle.
type STCParams struct {
	TCLength int     // stochastic cycle window, default 10
	Fast     int     // fast MACD period, default 12
	Slow     int     // slow MACD period, default 26
	Factor   float64 // stochastic smoothing factor, default 0.5
}

func (p STCParams) normalize() STCParams {
	p.TCLength = posInt(p.TCLength, 10)
	p.Fast = posInt(p.Fast, 12)
	p.Slow = posInt(p.Slow, 26)
	if p.Slow < p.Fast {
		p.Fast, p.Slow = p.Slow, p.Fast
	}
	p.Factor = posFloat(p.Factor, 0.5)
	return p
}

// STCWarmup returns the leading undefined run: the slow EMA settles at
// slow−1 and each of the two stochastic stages needs a further full
// tclength window.
func STCWarmup(p STCParams) int {
	p = p.normalize()
	return p.Slow - 1 + 2*(p.TCLength-1)
}

// STC runs two cascaded %K-style stochastics over a MACD line, each
// smoothed exponentially by Factor. A zero-range window holds the previous
// stochastic value instead of dividing by zero. Output is in [0, 100].
// Outputs: oscillator, MACD line, first-stage smoothed stochastic.
func STC(close *series.Series, p STCParams, path Path) Result {
	p = p.normalize()
	suffix := itoa(p.TCLength) + "_" + itoa(p.Fast) + "_" + itoa(p.Slow) + "_" + ftoa(p.Factor)
	name := "STC_" + suffix
	m := close.Len()
	warm := STCWarmup(p)
	if m <= warm {
		return Result{Name: name, Outputs: []Output{
			{Name: name, S: close.Derive(series.NaNs(m))},
			{Name: "STCmacd_" + suffix, S: close.Derive(series.NaNs(m))},
			{Name: "STCstoch_" + suffix, S: close.Derive(series.NaNs(m))},
		}}
	}

	fastEMA := ema(close.Values(), p.Fast)
	slowEMA := ema(close.Values(), p.Slow)
	macd := nans(m)
	for i := 0; i < m; i++ {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	var stc, stoch []float64
	if path == PathReference {
		stc, stoch = schaffReference(macd, p.TCLength, p.Factor)
	} else {
		stc, stoch = schaffOptimized(macd, p.TCLength, p.Factor)
	}
	// The cascade runs from bar zero over the zero-seeded arrays; only the
	// settled region is reported.
	for i := 0; i < warm && i < m; i++ {
		stc[i] = math.NaN()
		stoch[i] = math.NaN()
	}
	return Result{Name: name, Outputs: []Output{
		{Name: name, S: close.Derive(stc)},
		{Name: "STCmacd_" + suffix, S: close.Derive(macd)},
		{Name: "STCstoch_" + suffix, S: close.Derive(stoch)},
	}}
}

// schaffReference rescans each trailing window for its min/max, O(n·tclength).
func schaffReference(xmacd []float64, tclength int, factor float64) (pff, pf []float64) {
	m := len(xmacd)
	stoch1 := make([]float64, m)
	pf = make([]float64, m)

	for i := 1; i < m; i++ {
		lo, hi := windowRange(xmacd, i, tclength)
		if r := hi - lo; r > 0 {
			stoch1[i] = 100 * (xmacd[i] - lo) / r
		} else {
			stoch1[i] = stoch1[i-1] // flat or unsettled window: hold
		}
		pf[i] = pf[i-1] + factor*(stoch1[i]-pf[i-1])
	}

	stoch2 := make([]float64, m)
	pff = make([]float64, m)
	for i := 1; i < m; i++ {
		lo, hi := windowRange(pf, i, tclength)
		if r := hi - lo; r > 0 {
			stoch2[i] = 100 * (pf[i] - lo) / r
		} else {
			stoch2[i] = stoch2[i-1]
		}
		pff[i] = pff[i-1] + factor*(stoch2[i]-pff[i-1])
	}
	return pff, pf
}

// windowRange scans the trailing window [max(0,i−n+1), i]. A window
// containing an undefined value yields NaN bounds, which the caller treats
// as zero range.
func windowRange(vals []float64, i, n int) (lo, hi float64) {
	start := i - n + 1
	if start < 0 {
		start = 0
	}
	lo, hi = vals[start], vals[start]
	for j := start + 1; j <= i; j++ {
		v := vals[j]
		if math.IsNaN(v) {
			return math.NaN(), math.NaN()
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if math.IsNaN(vals[start]) {
		return math.NaN(), math.NaN()
	}
	return lo, hi
}

// schaffOptimized keeps both stages' rolling min/max incremental with
// monotonic deques and an undefined-count per window.
func schaffOptimized(xmacd []float64, tclength int, factor float64) (pff, pf []float64) {
	m := len(xmacd)
	stoch1 := make([]float64, m)
	pf = make([]float64, m)
	schaffStage(xmacd, stoch1, pf, tclength, factor)

	stoch2 := make([]float64, m)
	pff = make([]float64, m)
	schaffStage(pf, stoch2, pff, tclength, factor)
	return pff, pf
}

// schaffStage fills stoch and smooth in place for one cascade stage.
func schaffStage(src, stoch, smooth []float64, n int, factor float64) {
	m := len(src)
	minIdx := make([]int, 0, n)
	maxIdx := make([]int, 0, n)
	nanCount := 0
	push := func(i int) {
		if math.IsNaN(src[i]) {
			nanCount++
			return
		}
		for len(minIdx) > 0 && src[minIdx[len(minIdx)-1]] >= src[i] {
			minIdx = minIdx[:len(minIdx)-1]
		}
		minIdx = append(minIdx, i)
		for len(maxIdx) > 0 && src[maxIdx[len(maxIdx)-1]] <= src[i] {
			maxIdx = maxIdx[:len(maxIdx)-1]
		}
		maxIdx = append(maxIdx, i)
	}
	evict := func(i int) {
		old := i - n
		if old >= 0 && math.IsNaN(src[old]) {
			nanCount--
		}
		for len(minIdx) > 0 && minIdx[0] <= old {
			minIdx = minIdx[1:]
		}
		for len(maxIdx) > 0 && maxIdx[0] <= old {
			maxIdx = maxIdx[1:]
		}
	}

	push(0)
	for i := 1; i < m; i++ {
		push(i)
		evict(i)
		held := nanCount > 0 || len(minIdx) == 0
		if !held {
			if r := src[maxIdx[0]] - src[minIdx[0]]; r > 0 {
				stoch[i] = 100 * (src[i] - src[minIdx[0]]) / r
			} else {
				held = true
			}
		}
		if held {
			stoch[i] = stoch[i-1]
		}
		smooth[i] = smooth[i-1] + factor*(stoch[i]-smooth[i-1])
	}
}
