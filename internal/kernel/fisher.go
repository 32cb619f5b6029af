package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// FisherParams configures the Fisher Transform.
type FisherParams struct {
	Length int // normalization window, default 9
	Signal int // signal line lag, default 1
}

func (p FisherParams) normalize() FisherParams {
	p.Length = posInt(p.Length, 9)
	p.Signal = posInt(p.Signal, 1)
	return p
}

// FisherWarmup returns the leading undefined run: length−1 bars.
func FisherWarmup(p FisherParams) int { return p.normalize().Length - 1 }

// Fisher computes the Ehlers Fisher Transform: bar midpoints are normalized
// into (−1, 1) against their rolling range, smoothed, clamped to ±0.999
// before the log-odds step, and accumulated into the transform recurrence.
// The signal line is the transform lagged by Signal bars.
func Fisher(high, low *series.Series, p FisherParams, path Path) Result {
	p = p.normalize()
	suffix := itoa(p.Length) + "_" + itoa(p.Signal)
	name := "FISHERT_" + suffix
	m := high.Len()
	if m < p.Length {
		empty := high.Derive(series.NaNs(m))
		return Result{Name: name, Outputs: []Output{
			{Name: name, S: empty},
			{Name: "FISHERTs_" + suffix, S: high.Derive(series.NaNs(m))},
		}}
	}

	mid := hl2(high.Values(), low.Values())
	var hi, lo []float64
	if path == PathReference {
		hi = rollingMaxNaive(mid, p.Length)
		lo = rollingMinNaive(mid, p.Length)
	} else {
		hi = rollingMax(mid, p.Length)
		lo = rollingMin(mid, p.Length)
	}

	// Normalized position in the rolling range, centered on zero. A
	// degenerate range is floored at 0.001 instead of dividing by zero.
	position := nans(m)
	for i := p.Length - 1; i < m; i++ {
		rng := hi[i] - lo[i]
		if rng < 0.001 {
			rng = 0.001
		}
		position[i] = (mid[i]-lo[i])/rng - 0.5
	}

	out := nans(m)
	out[p.Length-1] = 0.0
	v := 0.0
	for i := p.Length; i < m; i++ {
		v = 0.66*position[i] + 0.67*v
		if v < -0.99 {
			v = -0.999
		}
		if v > 0.99 {
			v = 0.999
		}
		out[i] = 0.5 * (math.Log((1+v)/(1-v)) + out[i-1])
	}

	fisher := high.Derive(out)
	signal := fisher.Shift(p.Signal)
	return Result{Name: name, Outputs: []Output{
		{Name: name, S: fisher},
		{Name: "FISHERTs_" + suffix, S: signal},
	}}
}
