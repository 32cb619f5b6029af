package kernel

import (
	"math"

	"ta-kernels/internal/series"
)

// QQEParams configures the Quantitative Qualitative Estimation envelope.
type QQEParams struct {
	Length int     // RSI period, default 14
	Smooth int     // RSI smoothing period, default 5
	Factor float64 // envelope width factor, default 4.236
}

func (p QQEParams) normalize() QQEParams {
	p.Length = posInt(p.Length, 14)
	p.Smooth = posInt(p.Smooth, 5)
	p.Factor = posFloat(p.Factor, 4.236)
	return p
}

// QQEWarmup returns the leading undefined run of the trend line. The
// envelope width is a double Wilder smoothing (period 2·length−1) of the
// smoothed-RSI volatility, so the chain settles at
// 5·length + smooth − 4 bars.
func QQEWarmup(p QQEParams) int {
	p = p.normalize()
	return 5*p.Length + p.Smooth - 4
}

// QQE follows RSI-of-price through a smoothed envelope. The long and short
// lines trail the smoothed RSI at a distance derived from its own
// volatility; the trend flips on a crossover with hysteresis; current and
// prior values must straddle the envelope line, not merely cross a
// threshold. Outputs: trend line, direction (±1), long line, short line,
// smoothed RSI.
func QQE(close *series.Series, p QQEParams, path Path) Result {
	p = p.normalize()
	suffix := itoa(p.Length) + "_" + itoa(p.Smooth) + "_" + ftoa(p.Factor)
	name := "QQE_" + suffix
	m := close.Len()
	outputs := func(qqe, dir, long, short, rsiMA []float64) Result {
		return Result{Name: name, Outputs: []Output{
			{Name: name, S: close.Derive(qqe)},
			{Name: "QQEd_" + suffix, S: close.Derive(dir)},
			{Name: "QQEl_" + suffix, S: close.Derive(long)},
			{Name: "QQEs_" + suffix, S: close.Derive(short)},
			{Name: "QQE_" + suffix + "_RSIMA", S: close.Derive(rsiMA)},
		}}
	}
	if m <= QQEWarmup(p) {
		return outputs(series.NaNs(m), allOnes(m), series.NaNs(m), series.NaNs(m), series.NaNs(m))
	}

	wilders := 2*p.Length - 1
	rsi := rsiWilder(close.Values(), p.Length)
	rsiMA := ema(rsi, p.Smooth)

	// Envelope distance: double Wilder smoothing of the smoothed RSI's
	// bar-to-bar movement, scaled by the factor.
	atrRSI := nans(m)
	for i := 1; i < m; i++ {
		atrRSI[i] = math.Abs(rsiMA[i] - rsiMA[i-1])
	}
	dar := rma(rma(atrRSI, wilders), wilders)
	upper := nans(m)
	lower := nans(m)
	for i := 0; i < m; i++ {
		d := p.Factor * dar[i]
		upper[i] = rsiMA[i] + d
		lower[i] = rsiMA[i] - d
	}

	var qqe, dir, long, short []float64
	if path == PathReference {
		qqe, dir, long, short = qqeReference(rsiMA, upper, lower)
	} else {
		qqe, dir, long, short = qqeOptimized(rsiMA, upper, lower)
	}
	return outputs(qqe, dir, long, short, rsiMA)
}

// trailMax returns b when it is strictly greater than a, else a. Unlike
// math.Max an undefined b never displaces a defined a; the trailing line
// holds its level when the envelope is not yet formed.
func trailMax(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}

func trailMin(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

// qqeOptimized runs the envelope state machine over preallocated arrays.
func qqeOptimized(rsiMA, upper, lower []float64) (qqe, dir, long, short []float64) {
	m := len(rsiMA)
	qqe = nans(m)
	long = make([]float64, m)
	short = make([]float64, m)
	dir = allOnes(m)
	qqe[0] = rsiMA[0]

	for i := 1; i < m; i++ {
		cRSI, pRSI := rsiMA[i], rsiMA[i-1]
		cLong, cShort := long[i-1], short[i-1]
		pLong, pShort := 0.0, 0.0
		if i >= 2 {
			pLong, pShort = long[i-2], short[i-2]
		}

		// Trailing long line ratchets up only while RSI stays above it.
		if pRSI > cLong && cRSI > cLong {
			long[i] = trailMax(cLong, lower[i])
		} else {
			long[i] = lower[i]
		}
		// Trailing short line ratchets down only while RSI stays below it.
		if pRSI < cShort && cRSI < cShort {
			short[i] = trailMin(cShort, upper[i])
		} else {
			short[i] = upper[i]
		}

		// Crossover with hysteresis: the current and prior RSI must
		// straddle the line the trend is measured against.
		switch {
		case (cRSI > cShort && pRSI < pShort) || (cRSI <= cShort && pRSI >= pShort):
			dir[i] = 1
			qqe[i] = long[i]
		case (cRSI > cLong && pRSI < pLong) || (cRSI <= cLong && pRSI >= pLong):
			dir[i] = -1
			qqe[i] = short[i]
		default:
			dir[i] = dir[i-1]
			if dir[i] == 1 {
				qqe[i] = long[i]
			} else {
				qqe[i] = short[i]
			}
		}
	}
	return qqe, dir, long, short
}

// qqeReference carries the envelope as scalar state with explicit two-bar
// history instead of indexing back into the output arrays.
func qqeReference(rsiMA, upper, lower []float64) (qqe, dir, long, short []float64) {
	m := len(rsiMA)
	qqe = nans(m)
	long = make([]float64, m)
	short = make([]float64, m)
	dir = allOnes(m)
	qqe[0] = rsiMA[0]

	var (
		cLong, pLong   float64 // long line, one and two bars back
		cShort, pShort float64
		curDir         = 1.0
	)
	for i := 1; i < m; i++ {
		cRSI, pRSI := rsiMA[i], rsiMA[i-1]

		nextLong := lower[i]
		if pRSI > cLong && cRSI > cLong {
			nextLong = trailMax(cLong, lower[i])
		}
		nextShort := upper[i]
		if pRSI < cShort && cRSI < cShort {
			nextShort = trailMin(cShort, upper[i])
		}
		long[i] = nextLong
		short[i] = nextShort

		switch {
		case (cRSI > cShort && pRSI < pShort) || (cRSI <= cShort && pRSI >= pShort):
			curDir = 1
			qqe[i] = nextLong
		case (cRSI > cLong && pRSI < pLong) || (cRSI <= cLong && pRSI >= pLong):
			curDir = -1
			qqe[i] = nextShort
		default:
			if curDir == 1 {
				qqe[i] = nextLong
			} else {
				qqe[i] = nextShort
			}
		}
		dir[i] = curDir

		pLong, cLong = cLong, nextLong
		pShort, cShort = cShort, nextShort
	}
	return qqe, dir, long, short
}
