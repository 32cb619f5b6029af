package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// ALMAParams configures the Arnaud Legoux Moving Average.
type ALMAParams struct {
	Length int     // window, default 10
	Sigma  float64 // Gaussian width divisor, default 6.0
	Offset float64 // peak placement in [0,1], default 0.85
}

func (p ALMAParams) normalize() ALMAParams {
	p.Length = posInt(p.Length, 10)
	p.Sigma = posFloat(p.Sigma, 6.0)
	if p.Offset <= 0 || p.Offset > 1 {
		p.Offset = 0.85
	}
	return p
}

// ALMAWarmup returns the leading undefined run.
func ALMAWarmup(p ALMAParams) int { return p.normalize().Length + 1 }

// ALMA is a Gaussian-weighted window average with the weight peak shifted
// toward the most recent bar. Weight j applies to the bar j steps back.
func ALMA(close *series.Series, p ALMAParams, path Path) Result {
	p = p.normalize()
	name := "ALMA_" + itoa(p.Length) + "_" + ftoa(p.Sigma) + "_" + ftoa(p.Offset)
	m := close.Len()
	warm := ALMAWarmup(p)
	if m <= warm {
		return single(name, close.Derive(series.NaNs(m)))
	}

	vals := close.Values()
	out := nans(m)

	if path == PathReference {
		for i := warm; i < m; i++ {
			out[i] = almaAt(vals, i, p)
		}
		return single(name, close.Derive(out))
	}

	wtd, cum := almaWeights(p)
	for i := warm; i < m; i++ {
		dot := 0.0
		for j := 0; j < p.Length; j++ {
			dot += wtd[j] * vals[i-j]
		}
		out[i] = dot / cum
	}
	return single(name, close.Derive(out))
}

// almaAt recomputes the weights per bar. The dot product accumulates in
// the same order as the precomputed path so both agree bitwise.
func almaAt(vals []float64, i int, p ALMAParams) float64 {
	mu := p.Offset * float64(p.Length-1)
	sd := float64(p.Length) / p.Sigma
	dot, cum := 0.0, 0.0
	for j := 0; j < p.Length; j++ {
		d := float64(j) - mu
		w := math.Exp(-d * d / (2 * sd * sd))
		dot += w * vals[i-j]
		cum += w
	}
	return dot / cum
}

func almaWeights(p ALMAParams) (wtd []float64, cum float64) {
	mu := p.Offset * float64(p.Length-1)
	sd := float64(p.Length) / p.Sigma
	wtd = make([]float64, p.Length)
	for j := range wtd {
		d := float64(j) - mu
		wtd[j] = math.Exp(-d * d / (2 * sd * sd))
		cum += wtd[j]
	}
	return wtd, cum
}
