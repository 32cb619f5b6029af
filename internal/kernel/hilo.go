package kernel

import (
	"ta-kernels/internal/series"
)

// HiLoParams configures the Gann HiLo Activator.
type HiLoParams struct {
	HighLength int // SMA window over highs, default 13
	LowLength  int // SMA window over lows, default 21
}

func (p HiLoParams) normalize() HiLoParams {
	p.HighLength = posInt(p.HighLength, 13)
	p.LowLength = posInt(p.LowLength, 21)
	return p
}

// HiLoWarmup returns the leading undefined run: both moving averages must
// have a prior-bar value before the activator can pick a side.
func HiLoWarmup(p HiLoParams) int {
	p = p.normalize()
	if p.HighLength > p.LowLength {
		return p.HighLength
	}
	return p.LowLength
}

// HiLo trails price with the low-side SMA while long and the high-side
// SMA while short. A close beyond the opposite prior-bar SMA flips the
// regime; otherwise the line holds its previous value.
// Outputs: activator line, long leg, short leg, direction.
func HiLo(in Inputs, p HiLoParams, path Path) Result {
	p = p.normalize()
	suffix := itoa(p.HighLength) + "_" + itoa(p.LowLength)
	name := "HILO_" + suffix
	m := in.Close.Len()
	warm := HiLoWarmup(p)
	if m <= warm {
		nan := func() *series.Series { return in.Close.Derive(series.NaNs(m)) }
		return Result{Name: name, Outputs: []Output{
			{Name: name, S: nan()},
			{Name: "HILOl_" + suffix, S: nan()},
			{Name: "HILOs_" + suffix, S: nan()},
			{Name: "HILOd_" + suffix, S: in.Close.Derive(make([]float64, m))},
		}}
	}

	highs, lows, closes := in.High.Values(), in.Low.Values(), in.Close.Values()

	var highMA, lowMA func(i int) float64
	if path == PathReference {
		highMA = func(i int) float64 { return smaAt(highs, p.HighLength, i) }
		lowMA = func(i int) float64 { return smaAt(lows, p.LowLength, i) }
	} else {
		hm := sma(highs, p.HighLength)
		lm := sma(lows, p.LowLength)
		highMA = func(i int) float64 { return hm[i] }
		lowMA = func(i int) float64 { return lm[i] }
	}

	hilo := nans(m)
	long := nans(m)
	short := nans(m)
	dir := make([]float64, m)

	cur := Long
	if closes[warm] > highMA(warm-1) {
		cur = Long
	} else if closes[warm] < lowMA(warm-1) {
		cur = Short
	} else if closes[warm] < lowMA(warm) {
		cur = Short
	}
	if cur == Long {
		hilo[warm] = lowMA(warm)
	} else {
		hilo[warm] = highMA(warm)
	}
	dir[warm] = float64(cur)

	for i := warm + 1; i < m; i++ {
		switch {
		case closes[i] > highMA(i-1):
			cur = Long
			hilo[i] = lowMA(i)
		case closes[i] < lowMA(i-1):
			cur = Short
			hilo[i] = highMA(i)
		default:
			hilo[i] = hilo[i-1]
		}
		dir[i] = float64(cur)
	}
	for i := warm; i < m; i++ {
		if dir[i] == float64(Long) {
			long[i] = hilo[i]
		} else {
			short[i] = hilo[i]
		}
	}

	return Result{Name: name, Outputs: []Output{
		{Name: name, S: in.Close.Derive(hilo)},
		{Name: "HILOl_" + suffix, S: in.Close.Derive(long)},
		{Name: "HILOs_" + suffix, S: in.Close.Derive(short)},
		{Name: "HILOd_" + suffix, S: in.Close.Derive(dir)},
	}}
}
