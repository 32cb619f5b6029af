package kernel

import (
	"ta-kernels/internal/series"
)

// SupertrendParams configures the Supertrend trend-following bands.
type SupertrendParams struct {
	Length     int     // ATR period, default 7
	Multiplier float64 // band width in ATRs, default 3.0
}

func (p SupertrendParams) normalize() SupertrendParams {
	p.Length = posInt(p.Length, 7)
	p.Multiplier = posFloat(p.Multiplier, 3.0)
	return p
}

// SupertrendWarmup returns the leading undefined run of the trend line:
// length bars (the ATR needs length true ranges, the first of which forms
// at index 1).
func SupertrendWarmup(p SupertrendParams) int { return p.normalize().Length }

// Supertrend computes the ratcheted upper/lower stop bands around
// hl2 ± multiplier·ATR. While the direction is unchanged a band only moves
// toward price, never away; the direction flips when the close crosses the
// opposite band. Outputs: trend line, direction (±1), long line, short line.
//
// The optimized path precomputes both band arrays and runs the array core;
// the reference path recomputes hl2 ± multiplier·ATR at every step and
// carries the ratcheted bands as scalar state. These are the two historical
// formulations of the same contract; they agree within tolerance because
// the band arithmetic is identical, only its staging differs.
func Supertrend(high, low, close *series.Series, p SupertrendParams, path Path) Result {
	p = p.normalize()
	suffix := itoa(p.Length) + "_" + ftoa(p.Multiplier)
	m := close.Len()
	if m < 2 || m <= p.Length {
		return supertrendResult(suffix, close,
			series.NaNs(m), allOnes(m), series.NaNs(m), series.NaNs(m))
	}

	a := atr(high.Values(), low.Values(), close.Values(), p.Length)
	mid := hl2(high.Values(), low.Values())

	if path == PathReference {
		trend, dir, long, short := supertrendReference(close.Values(), mid, a, p.Multiplier)
		return supertrendResult(suffix, close, trend, dir, long, short)
	}
	upper := make([]float64, m)
	lower := make([]float64, m)
	for i := 0; i < m; i++ {
		d := p.Multiplier * a[i]
		upper[i] = mid[i] + d
		lower[i] = mid[i] - d
	}
	trend, dir, long, short := supertrendCore(close.Values(), upper, lower)
	return supertrendResult(suffix, close, trend, dir, long, short)
}

// SupertrendFromBands evaluates the same contract from caller-precomputed
// band series, the alternate input shape used when bands come from another
// pipeline stage. Band series must align with close. The band core is
// shared by both paths, so no path argument applies here.
func SupertrendFromBands(close, upper, lower *series.Series, p SupertrendParams) Result {
	p = p.normalize()
	suffix := itoa(p.Length) + "_" + ftoa(p.Multiplier)
	trend, dir, long, short := supertrendCore(close.Values(), upper.Copy(), lower.Copy())
	return supertrendResult(suffix, close, trend, dir, long, short)
}

// supertrendCore is the canonical band state machine. It mutates the band
// slices in place while ratcheting, so callers pass owned copies.
func supertrendCore(close, upper, lower []float64) (trend, dir, long, short []float64) {
	m := len(close)
	trend = nans(m)
	long = nans(m)
	short = nans(m)
	dir = allOnes(m)

	for i := 1; i < m; i++ {
		switch {
		case close[i] > upper[i-1]:
			dir[i] = 1
		case close[i] < lower[i-1]:
			dir[i] = -1
		default:
			dir[i] = dir[i-1]
			// Ratchet: bands only move toward price while the trend holds.
			if dir[i] > 0 && lower[i] < lower[i-1] {
				lower[i] = lower[i-1]
			}
			if dir[i] < 0 && upper[i] > upper[i-1] {
				upper[i] = upper[i-1]
			}
		}
		if dir[i] > 0 {
			trend[i] = lower[i]
			long[i] = lower[i]
		} else {
			trend[i] = upper[i]
			short[i] = upper[i]
		}
	}
	return trend, dir, long, short
}

// supertrendReference recomputes the raw bands per step and carries the
// ratcheted values as scalar state.
func supertrendReference(close, mid, a []float64, mult float64) (trend, dir, long, short []float64) {
	m := len(close)
	trend = nans(m)
	long = nans(m)
	short = nans(m)
	dir = allOnes(m)

	prevUpper := mid[0] + mult*a[0] // NaN while ATR is undefined
	prevLower := mid[0] - mult*a[0]
	prevDir := 1.0

	for i := 1; i < m; i++ {
		d := mult * a[i]
		upper := mid[i] + d
		lower := mid[i] - d

		cur := prevDir
		switch {
		case close[i] > prevUpper:
			cur = 1
		case close[i] < prevLower:
			cur = -1
		default:
			if cur > 0 && lower < prevLower {
				lower = prevLower
			}
			if cur < 0 && upper > prevUpper {
				upper = prevUpper
			}
		}
		dir[i] = cur
		if cur > 0 {
			trend[i] = lower
			long[i] = lower
		} else {
			trend[i] = upper
			short[i] = upper
		}
		prevUpper, prevLower, prevDir = upper, lower, cur
	}
	return trend, dir, long, short
}

func supertrendResult(suffix string, close *series.Series, trend, dir, long, short []float64) Result {
	name := "SUPERT_" + suffix
	return Result{Name: name, Outputs: []Output{
		{Name: name, S: close.Derive(trend)},
		{Name: "SUPERTd_" + suffix, S: close.Derive(dir)},
		{Name: "SUPERTl_" + suffix, S: close.Derive(long)},
		{Name: "SUPERTs_" + suffix, S: close.Derive(short)},
	}}
}

func allOnes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
