package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// SSFParams configures Ehlers' Super Smoother Filter.
type SSFParams struct {
	Length int // period, default 10
	Poles  int // 2 or 3, default 2
}

func (p SSFParams) normalize() SSFParams {
	p.Length = posInt(p.Length, 10)
	if p.Poles != 2 && p.Poles != 3 {
		p.Poles = 2
	}
	return p
}

// SSFWarmup returns the leading undefined run of the SSF output: zero.
// The filter emits a value at every index because its first steps read the
// tail of the output buffer (see below); its state depth is Poles bars.
func SSFWarmup(p SSFParams) int { return 0 }

// SSF applies Ehlers' two- or three-pole super smoother low-pass filter.
// Coefficients are derived once from the period via the standard
// exponential/cosine pole placement and the recurrence applies them every
// step.
//
// At the first Poles indices the recurrence reads prior outputs through
// wrap-around indexing into the not-yet-computed tail of the output buffer,
// which at that moment still holds the trailing input values. This is a
// faithful reproduction of the historical behavior, almost certainly an
// accident of circular indexing on a linear copy rather than a deliberate
// seeding scheme; both paths reproduce it identically. Do not "fix" it to
// zero padding without breaking comparability with existing outputs.
func SSF(close *series.Series, p SSFParams, path Path) Result {
	p = p.normalize()
	name := "SSF_" + itoa(p.Length) + "_" + itoa(p.Poles)
	m := close.Len()
	if m < p.Poles {
		return single(name, close.Derive(series.NaNs(m)))
	}
	c1, c2, c3, c4 := ssfCoeffs(p.Length, p.Poles)
	var out []float64
	if path == PathReference {
		out = ssfReference(close.Values(), p.Poles, c1, c2, c3, c4)
	} else {
		out = ssfOptimized(close.Values(), p.Poles, c1, c2, c3, c4)
	}
	return single(name, close.Derive(out))
}

// ssfCoeffs places the filter poles. For two poles c4 is zero.
func ssfCoeffs(length, poles int) (c1, c2, c3, c4 float64) {
	if poles == 3 {
		x := math.Pi / float64(length)
		a0 := math.Exp(-x)
		b0 := 2 * a0 * math.Cos(math.Sqrt(3)*x)
		c0 := a0 * a0

		c4 = c0 * c0
		c3 = -c0 * (1 + b0)
		c2 = c0 + b0
		c1 = 1 - c2 - c3 - c4
		return
	}
	x := math.Pi * math.Sqrt(2) / float64(length)
	a0 := math.Exp(-x)
	c3 = -a0 * a0
	c2 = 2 * a0 * math.Cos(x)
	c1 = 1 - c2 - c3
	return
}

// ssfReference is the straightforward loop with modulo wrap-around on every
// prior-output read.
func ssfReference(vals []float64, poles int, c1, c2, c3, c4 float64) []float64 {
	m := len(vals)
	out := make([]float64, m)
	copy(out, vals)
	wrap := func(i int) int { return ((i % m) + m) % m }
	for i := 0; i < m; i++ {
		v := c1*vals[i] + c2*out[wrap(i-1)] + c3*out[wrap(i-2)]
		if poles == 3 {
			v += c4 * out[wrap(i-3)]
		}
		out[i] = v
	}
	return out
}

// ssfOptimized hoists the wrap-around handling out of the hot loop: only the
// first Poles iterations can reach the buffer tail, everything after runs
// with direct indexing.
func ssfOptimized(vals []float64, poles int, c1, c2, c3, c4 float64) []float64 {
	m := len(vals)
	out := make([]float64, m)
	copy(out, vals)
	wrap := func(i int) int { return ((i % m) + m) % m }
	limit := poles
	if limit > m {
		limit = m
	}
	for i := 0; i < limit; i++ {
		v := c1*vals[i] + c2*out[wrap(i-1)] + c3*out[wrap(i-2)]
		if poles == 3 {
			v += c4 * out[wrap(i-3)]
		}
		out[i] = v
	}
	if poles == 3 {
		for i := limit; i < m; i++ {
			out[i] = c1*vals[i] + c2*out[i-1] + c3*out[i-2] + c4*out[i-3]
		}
	} else {
		for i := limit; i < m; i++ {
			out[i] = c1*vals[i] + c2*out[i-1] + c3*out[i-2]
		}
	}
	return out
}
