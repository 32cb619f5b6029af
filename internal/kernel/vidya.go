package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// VIDYAParams configures the Variable Index Dynamic Average.
type VIDYAParams struct {
	Length int // CMO window and EMA period, default 14
}

func (p VIDYAParams) normalize() VIDYAParams {
	p.Length = posInt(p.Length, 14)
	return p
}

// VIDYAWarmup returns the leading undefined run.
func VIDYAWarmup(p VIDYAParams) int { return p.normalize().Length }

// VIDYA scales a fixed EMA alpha by the absolute Chande Momentum
// Oscillator, so the average tracks tightly in directional markets and
// freezes when gains and losses balance.
func VIDYA(close *series.Series, p VIDYAParams, path Path) Result {
	p = p.normalize()
	name := "VIDYA_" + itoa(p.Length)
	m := close.Len()
	if m <= p.Length {
		return single(name, close.Derive(series.NaNs(m)))
	}

	vals := close.Values()
	alpha := 2.0 / (float64(p.Length) + 1)
	out := nans(m)

	if path == PathReference {
		prev := 0.0
		for i := p.Length; i < m; i++ {
			sp, sn := 0.0, 0.0
			for j := i - p.Length + 1; j <= i; j++ {
				if d := vals[j] - vals[j-1]; d > 0 {
					sp += d
				} else {
					sn -= d
				}
			}
			prev = vidyaStep(vals[i], prev, alpha, sp, sn)
			out[i] = prev
		}
		return single(name, close.Derive(out))
	}

	// Signed rolling sums over the drift window, maintained incrementally.
	sp, sn := 0.0, 0.0
	for j := 1; j <= p.Length-1; j++ {
		if d := vals[j] - vals[j-1]; d > 0 {
			sp += d
		} else {
			sn -= d
		}
	}
	prev := 0.0
	for i := p.Length; i < m; i++ {
		if d := vals[i] - vals[i-1]; d > 0 {
			sp += d
		} else {
			sn -= d
		}
		prev = vidyaStep(vals[i], prev, alpha, sp, sn)
		out[i] = prev
		if d := vals[i-p.Length+1] - vals[i-p.Length]; d > 0 {
			sp -= d
		} else {
			sn += d
		}
	}
	return single(name, close.Derive(out))
}

func vidyaStep(v, prev, alpha, sp, sn float64) float64 {
	cmo := 0.0
	if sum := sp + sn; sum != 0 {
		cmo = math.Abs((sp - sn) / sum)
	}
	return alpha*cmo*v + (1-alpha*cmo)*prev
}
