package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// JMAParams configures the Jurik Moving Average.
type JMAParams struct {
	Length int     // period, default 7
	Phase  float64 // overshoot control, clamped to [-100, 100] bands, default 0
}

func (p JMAParams) normalize() JMAParams {
	p.Length = posInt(p.Length, 7)
	return p
}

// JMAWarmup returns the leading undefined run.
func JMAWarmup(p JMAParams) int { return p.normalize().Length - 1 }

// jmaConsts holds the per-evaluation constants derived from the params.
// The window constants (length1, pow1, bet) run off the halved period;
// beta runs off the full period, matching the classic Jurik
// parameterization.
type jmaConsts struct {
	pr      float64
	length1 float64
	pow1    float64
	bet     float64
	beta    float64
}

func newJMAConsts(p JMAParams) jmaConsts {
	n := float64(p.Length) - 1
	half := 0.5 * n
	var c jmaConsts
	switch {
	case p.Phase < -100:
		c.pr = 0.5
	case p.Phase > 100:
		c.pr = 2.5
	default:
		c.pr = 1.5 + p.Phase*0.01
	}
	c.length1 = math.Max(math.Log(math.Sqrt(half))/math.Log(2.0)+2.0, 0)
	c.pow1 = math.Max(c.length1-2.0, 0.5)
	length2 := c.length1 * math.Sqrt(half)
	c.bet = length2 / (length2 + 1)
	c.beta = 0.45 * n / (0.45*n + 2.0)
	return c
}

const (
	jmaSumLength = 10 // volatility delta window
	jmaAvgWindow = 66 // trailing mean window over the volatility sum
)

// JMA is Jurik's three-stage adaptive filter. Per-bar volatility relative
// to its trailing mean sets a dynamic alpha, which drives an adaptive EMA,
// a Kalman-style correction, and a final double-smoothed stage.
func JMA(close *series.Series, p JMAParams, path Path) Result {
	p = p.normalize()
	name := "JMA_" + itoa(p.Length) + "_" + ftoa(p.Phase)
	m := close.Len()
	if m < p.Length {
		return single(name, close.Derive(series.NaNs(m)))
	}

	var out []float64
	if path == PathReference {
		out = jmaReference(close.Values(), p)
	} else {
		out = jmaOptimized(close.Values(), p)
	}
	for i := 0; i < p.Length-1; i++ {
		out[i] = math.NaN()
	}
	return single(name, close.Derive(out))
}

// jmaReference keeps full volatility history and rescans the trailing
// mean window every bar.
func jmaReference(vals []float64, p JMAParams) []float64 {
	c := newJMAConsts(p)
	m := len(vals)
	out := make([]float64, m)
	volty := make([]float64, m)
	vSum := make([]float64, m)

	ma1 := vals[0]
	uBand, lBand := vals[0], vals[0]
	var det0, det1, ma2 float64
	out[0] = vals[0]

	for i := 1; i < m; i++ {
		price := vals[i]

		del1 := price - uBand
		del2 := price - lBand
		if math.Abs(del1) != math.Abs(del2) {
			volty[i] = math.Max(math.Abs(del1), math.Abs(del2))
		}

		old := i - jmaSumLength
		if old < 0 {
			old = 0
		}
		vSum[i] = vSum[i-1] + (volty[i]-volty[old])/jmaSumLength
		lo := i - jmaAvgWindow + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for j := lo; j <= i; j++ {
			sum += vSum[j]
		}
		avgVolty := sum / float64(i-lo+1)

		dVolty := 0.0
		if avgVolty != 0 {
			dVolty = volty[i] / avgVolty
		}
		rVolty := math.Max(1.0, math.Min(math.Pow(c.length1, 1/c.pow1), dVolty))

		pow2 := math.Pow(rVolty, c.pow1)
		kv := math.Pow(c.bet, math.Sqrt(pow2))
		if del1 > 0 {
			uBand = price
		} else {
			uBand = price - kv*del1
		}
		if del2 < 0 {
			lBand = price
		} else {
			lBand = price - kv*del2
		}

		alpha := math.Pow(c.beta, pow2)
		ma1 = (1-alpha)*price + alpha*ma1
		det0 = (price-ma1)*(1-c.beta) + c.beta*det0
		ma2 = ma1 + c.pr*det0
		det1 = (ma2-out[i-1])*(1-alpha)*(1-alpha) + alpha*alpha*det1
		out[i] = out[i-1] + det1
	}
	return out
}

// jmaOptimized replaces the history arrays with fixed-depth rings and a
// running window sum for the trailing mean.
func jmaOptimized(vals []float64, p JMAParams) []float64 {
	c := newJMAConsts(p)
	m := len(vals)
	out := make([]float64, m)

	voltyRing := newHistRing(jmaSumLength + 1)
	vSumRing := newHistRing(jmaAvgWindow)
	voltyRing.push(0)
	vSumRing.push(0)
	vSumPrev, runSum := 0.0, 0.0

	ma1 := vals[0]
	uBand, lBand := vals[0], vals[0]
	var det0, det1, ma2 float64
	out[0] = vals[0]

	for i := 1; i < m; i++ {
		price := vals[i]

		del1 := price - uBand
		del2 := price - lBand
		volty := 0.0
		if math.Abs(del1) != math.Abs(del2) {
			volty = math.Max(math.Abs(del1), math.Abs(del2))
		}

		// Values past history read back as zero, which is exactly the
		// zero-seeded prefix the full arrays would hold.
		vSum := vSumPrev + (volty-voltyRing.at(jmaSumLength-1))/jmaSumLength
		runSum += vSum - vSumRing.at(jmaAvgWindow-1)
		count := i + 1
		if count > jmaAvgWindow {
			count = jmaAvgWindow
		}
		avgVolty := runSum / float64(count)

		dVolty := 0.0
		if avgVolty != 0 {
			dVolty = volty / avgVolty
		}
		rVolty := math.Max(1.0, math.Min(math.Pow(c.length1, 1/c.pow1), dVolty))

		pow2 := math.Pow(rVolty, c.pow1)
		kv := math.Pow(c.bet, math.Sqrt(pow2))
		if del1 > 0 {
			uBand = price
		} else {
			uBand = price - kv*del1
		}
		if del2 < 0 {
			lBand = price
		} else {
			lBand = price - kv*del2
		}

		alpha := math.Pow(c.beta, pow2)
		ma1 = (1-alpha)*price + alpha*ma1
		det0 = (price-ma1)*(1-c.beta) + c.beta*det0
		ma2 = ma1 + c.pr*det0
		det1 = (ma2-out[i-1])*(1-alpha)*(1-alpha) + alpha*alpha*det1
		out[i] = out[i-1] + det1

		voltyRing.push(volty)
		vSumRing.push(vSum)
		vSumPrev = vSum
	}
	return out
}
