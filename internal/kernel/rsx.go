package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// RSXParams configures the Jurik RSX oscillator.
type RSXParams struct {
	Length int // default 14
}

func (p RSXParams) normalize() RSXParams {
	p.Length = posInt(p.Length, 14)
	return p
}

// RSXWarmup returns the leading undefined run: length−1 bars. The first
// defined index is seeded to 0.
func RSXWarmup(p RSXParams) int { return p.normalize().Length - 1 }

// RSX computes Jurik's noise-free RSI variant: a cascade of paired
// exponential smoothers applied to price momentum and to its magnitude,
// with a warm-up gate that emits the neutral 50 until enough bars have been
// processed. Output is hard-clamped to [0, 100].
//
// The gate is a pair of counters: barGate counts processed bars and resets
// to zero if the price has not moved by the time it reaches gateMin, which
// restarts the warm-up from the current bar.
func RSX(close *series.Series, p RSXParams, path Path) Result {
	p = p.normalize()
	name := "RSX_" + itoa(p.Length)
	m := close.Len()
	if m < p.Length {
		return single(name, close.Derive(series.NaNs(m)))
	}
	var out []float64
	if path == PathReference {
		out = rsxReference(close.Values(), p.Length)
	} else {
		out = rsxOptimized(close.Values(), p.Length)
	}
	return single(name, close.Derive(out))
}

// rsxSmoother is one stage of the Jurik cascade: two chained single-pole
// filters blended 3:1 to cancel lag.
type rsxSmoother struct {
	fast, slow float64
}

func (s *rsxSmoother) update(v, up, down float64) float64 {
	s.fast = down*s.fast + up*v
	s.slow = up*s.fast + down*s.slow
	return 1.5*s.fast - 0.5*s.slow
}

// rsxReference walks the cascade with named state: three smoother stages on
// momentum, three on absolute momentum, plus the bar-count gate.
func rsxReference(vals []float64, length int) []float64 {
	m := len(vals)
	out := nans(m)
	out[length-1] = 0.0

	var (
		mom    [3]rsxSmoother
		absMom [3]rsxSmoother

		price, prevPrice float64 // input scaled by 100
		barGate, gateMin float64 // processed-bar counter and its threshold
		moved            bool    // price has changed since the gate opened
		trendSc, volSc   float64 // cascade outputs
	)
	up := 3.0 / (float64(length) + 2.0)
	down := 1.0 - up

	for i := length; i < m; i++ {
		if barGate == 0.0 {
			// (Re)start the gate; smoother state deliberately survives.
			barGate = 1.0
			moved = false
			gateMin = math.Max(float64(length)-1.0, 5.0)
			price = 100.0 * vals[i]
		} else {
			if gateMin <= barGate {
				barGate = gateMin + 1.0
			} else {
				barGate++
			}
			prevPrice = price
			price = 100.0 * vals[i]
			delta := price - prevPrice

			v := delta
			for s := range mom {
				v = mom[s].update(v, up, down)
			}
			trendSc = v

			v = math.Abs(delta)
			for s := range absMom {
				v = absMom[s].update(v, up, down)
			}
			volSc = v

			if gateMin >= barGate && price != prevPrice {
				moved = true
			}
			if gateMin == barGate && !moved {
				barGate = 0.0 // flat so far: restart the gate
			}
		}

		v := 50.0
		if gateMin < barGate && volSc > 0.0000000001 {
			v = (trendSc/volSc + 1.0) * 50.0
			if v > 100.0 {
				v = 100.0
			}
			if v < 0.0 {
				v = 0.0
			}
		}
		out[i] = v
	}
	return out
}

// rsxOptimized is the same cascade flattened into locals, no per-stage
// indirection in the hot loop.
func rsxOptimized(vals []float64, length int) []float64 {
	m := len(vals)
	out := nans(m)
	out[length-1] = 0.0

	var (
		cur, prev                    float64
		m1f, m1s, m2f, m2s, m3f, m3s float64
		a1f, a1s, a2f, a2s, a3f, a3s float64
		gateMin, barGate, movedFlag  float64
		trendSc, volSc, osc          float64
	)
	up := 3.0 / (float64(length) + 2.0)
	down := 1.0 - up

	for i := length; i < m; i++ {
		if barGate == 0.0 {
			barGate = 1.0
			movedFlag = 0.0
			gateMin = float64(length) - 1.0
			if gateMin < 5.0 {
				gateMin = 5.0
			}
			cur = 100.0 * vals[i]
		} else {
			if gateMin <= barGate {
				barGate = gateMin + 1.0
			} else {
				barGate++
			}
			prev = cur
			cur = 100.0 * vals[i]
			delta := cur - prev

			m1f = down*m1f + up*delta
			m1s = up*m1f + down*m1s
			v := 1.5*m1f - 0.5*m1s
			m2f = down*m2f + up*v
			m2s = up*m2f + down*m2s
			v = 1.5*m2f - 0.5*m2s
			m3f = down*m3f + up*v
			m3s = up*m3f + down*m3s
			trendSc = 1.5*m3f - 0.5*m3s

			ad := math.Abs(delta)
			a1f = down*a1f + up*ad
			a1s = up*a1f + down*a1s
			v = 1.5*a1f - 0.5*a1s
			a2f = down*a2f + up*v
			a2s = up*a2f + down*a2s
			v = 1.5*a2f - 0.5*a2s
			a3f = down*a3f + up*v
			a3s = up*a3f + down*a3s
			volSc = 1.5*a3f - 0.5*a3s

			if gateMin >= barGate && cur != prev {
				movedFlag = 1.0
			}
			if gateMin == barGate && movedFlag == 0.0 {
				barGate = 0.0
			}
		}

		if gateMin < barGate && volSc > 0.0000000001 {
			osc = (trendSc/volSc + 1.0) * 50.0
			if osc > 100.0 {
				osc = 100.0
			}
			if osc < 0.0 {
				osc = 0.0
			}
		} else {
			osc = 50.0
		}
		out[i] = osc
	}
	return out
}
