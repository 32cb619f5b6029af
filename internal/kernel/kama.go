package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// KAMAParams configures Kaufman's Adaptive Moving Average.
type KAMAParams struct {
	Length int // efficiency-ratio window, default 10
	Fast   int // fastest smoothing period, default 2
	Slow   int // slowest smoothing period, default 30
}

func (p KAMAParams) normalize() KAMAParams {
	p.Length = posInt(p.Length, 10)
	p.Fast = posInt(p.Fast, 2)
	p.Slow = posInt(p.Slow, 30)
	return p
}

// KAMAWarmup returns the leading undefined run.
func KAMAWarmup(p KAMAParams) int { return p.normalize().Length - 1 }

// KAMA adapts its smoothing constant per bar by the efficiency ratio:
// net change over the window divided by the sum of absolute bar-to-bar
// changes. Trending input pushes the constant toward the fast end,
// choppy input toward the slow end.
func KAMA(close *series.Series, p KAMAParams, path Path) Result {
	p = p.normalize()
	name := "KAMA_" + itoa(p.Length) + "_" + itoa(p.Fast) + "_" + itoa(p.Slow)
	m := close.Len()
	if m <= p.Length {
		return single(name, close.Derive(series.NaNs(m)))
	}

	vals := close.Values()
	fr := 2.0 / (float64(p.Fast) + 1)
	sr := 2.0 / (float64(p.Slow) + 1)

	out := nans(m)
	out[p.Length-1] = 0.0
	if path == PathReference {
		for i := p.Length; i < m; i++ {
			vol := 0.0
			for j := i - p.Length + 1; j <= i; j++ {
				vol += math.Abs(vals[j] - vals[j-1])
			}
			kamaStep(out, vals, i, p.Length, vol, fr, sr)
		}
		return single(name, close.Derive(out))
	}

	// Rolling volatility sum maintained incrementally.
	vol := 0.0
	for j := 1; j <= p.Length-1; j++ {
		vol += math.Abs(vals[j] - vals[j-1])
	}
	for i := p.Length; i < m; i++ {
		vol += math.Abs(vals[i] - vals[i-1])
		kamaStep(out, vals, i, p.Length, vol, fr, sr)
		vol -= math.Abs(vals[i-p.Length+1] - vals[i-p.Length])
	}
	return single(name, close.Derive(out))
}

func kamaStep(out, vals []float64, i, length int, vol, fr, sr float64) {
	change := math.Abs(vals[i] - vals[i-length])
	er := 0.0
	if vol != 0 {
		er = change / vol
	}
	sc := er*(fr-sr) + sr
	sc *= sc
	out[i] = sc*vals[i] + (1-sc)*out[i-1]
}
