package model

import (
	"math"
	"math/rand"
	"time"
)

// SyntheticFrame builds a seeded random-walk OHLCV frame of n bars. Used
// by the parity harness and as fixture data in tests; the same seed always
// yields the same frame.
func SyntheticFrame(n int, seed int64) *Frame {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]Bar, n)
	price := 100.0
	t0 := time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)
	for i := range bars {
		drift := rng.NormFloat64() * 0.8
		open := price
		close := price + drift
		span := math.Abs(rng.NormFloat64()) * 0.5
		high := math.Max(open, close) + span
		low := math.Min(open, close) - span
		bars[i] = Bar{
			TS:     t0.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: float64(100 + rng.Intn(10000)),
		}
		price = close
	}
	f, err := NewFrame(bars)
	if err != nil {
		panic(err) // timestamps are constructed strictly increasing
	}
	return f
}
