package kernel

import "math"

// Shared smoothing primitives used as pre-processing by the recurrence
// kernels. All operate on raw value slices with NaN heads: a function's
// output is NaN wherever its inputs cannot yet support a defined value.

// firstValid returns the index of the first defined value, or len(vals).
func firstValid(vals []float64) int {
	for i, v := range vals {
		if !math.IsNaN(v) {
			return i
		}
	}
	return len(vals)
}

// smooth runs a single-pole recurrence seeded with the simple mean of the
// first n defined values: out[i] = alpha*v[i] + (1-alpha)*out[i-1].
func smoothed(vals []float64, n int, alpha float64) []float64 {
	m := len(vals)
	out := nans(m)
	fv := firstValid(vals)
	if n <= 0 || fv+n > m {
		return out
	}
	sum := 0.0
	for i := fv; i < fv+n; i++ {
		sum += vals[i]
	}
	prev := sum / float64(n)
	out[fv+n-1] = prev
	for i := fv + n; i < m; i++ {
		prev = alpha*vals[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// ema is the exponential moving average with an SMA seed.
func ema(vals []float64, n int) []float64 {
	return smoothed(vals, n, 2.0/float64(n+1))
}

// rma is Wilder's smoothing, the EMA variant used by ATR and RSI.
func rma(vals []float64, n int) []float64 {
	return smoothed(vals, n, 1.0/float64(n))
}

// sma is the simple moving average; NaN until a full window exists.
func sma(vals []float64, n int) []float64 {
	m := len(vals)
	out := nans(m)
	if n <= 0 || n > m {
		return out
	}
	sum := 0.0
	for i := 0; i < m; i++ {
		sum += vals[i]
		if i >= n {
			sum -= vals[i-n]
		}
		if i >= n-1 {
			out[i] = sum / float64(n)
		}
	}
	return out
}

// smaAt recomputes one SMA window by rescanning, the reference-path
// counterpart of the incremental sma above.
func smaAt(vals []float64, n, i int) float64 {
	if i < n-1 {
		return math.NaN()
	}
	sum := 0.0
	for j := i - n + 1; j <= i; j++ {
		sum += vals[j]
	}
	return sum / float64(n)
}

// trueRange returns the per-bar true range; undefined at index 0 where no
// prior close exists.
func trueRange(high, low, close []float64) []float64 {
	m := len(close)
	tr := nans(m)
	for i := 1; i < m; i++ {
		hl := high[i] - low[i]
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// atr is Wilder's average true range, defined from index n onward.
func atr(high, low, close []float64, n int) []float64 {
	return rma(trueRange(high, low, close), n)
}

// rsiWilder computes the relative strength index with Wilder smoothing,
// defined from index n onward. A zero average loss maps to 100, the
// saturated reading, rather than a division error.
func rsiWilder(vals []float64, n int) []float64 {
	m := len(vals)
	out := nans(m)
	if n <= 0 || m < n+1 {
		return out
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= n; i++ {
		d := vals[i] - vals[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(n)
	avgLoss /= float64(n)
	out[n] = rsiFrom(avgGain, avgLoss)
	p := float64(n)
	for i := n + 1; i < m; i++ {
		d := vals[i] - vals[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiFrom(avgGain, avgLoss)
	}
	return out
}

func rsiFrom(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// rollingMax returns the max over the trailing n-bar window using a
// monotonic deque, O(1) amortized per bar. Input must be NaN-free.
func rollingMax(vals []float64, n int) []float64 {
	return rollingExtreme(vals, n, func(a, b float64) bool { return a <= b })
}

// rollingMin is the deque-based trailing minimum. Input must be NaN-free.
func rollingMin(vals []float64, n int) []float64 {
	return rollingExtreme(vals, n, func(a, b float64) bool { return a >= b })
}

func rollingExtreme(vals []float64, n int, evict func(kept, incoming float64) bool) []float64 {
	m := len(vals)
	out := nans(m)
	if n <= 0 || n > m {
		return out
	}
	deque := make([]int, 0, n)
	for i := 0; i < m; i++ {
		for len(deque) > 0 && evict(vals[deque[len(deque)-1]], vals[i]) {
			deque = deque[:len(deque)-1]
		}
		deque = append(deque, i)
		if deque[0] <= i-n {
			deque = deque[1:]
		}
		if i >= n-1 {
			out[i] = vals[deque[0]]
		}
	}
	return out
}

// rollingMaxNaive and rollingMinNaive rescan each window; the reference
// path's counterpart of the deque versions.
func rollingMaxNaive(vals []float64, n int) []float64 {
	m := len(vals)
	out := nans(m)
	for i := n - 1; i < m; i++ {
		hi := vals[i-n+1]
		for j := i - n + 2; j <= i; j++ {
			if vals[j] > hi {
				hi = vals[j]
			}
		}
		out[i] = hi
	}
	return out
}

func rollingMinNaive(vals []float64, n int) []float64 {
	m := len(vals)
	out := nans(m)
	for i := n - 1; i < m; i++ {
		lo := vals[i-n+1]
		for j := i - n + 2; j <= i; j++ {
			if vals[j] < lo {
				lo = vals[j]
			}
		}
		out[i] = lo
	}
	return out
}

// hl2 is the bar midpoint (high+low)/2.
func hl2(high, low []float64) []float64 {
	out := make([]float64, len(high))
	for i := range out {
		out[i] = 0.5 * (high[i] + low[i])
	}
	return out
}

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
