// Package model holds the bar-data shapes the engine evaluates: an OHLCV
// frame aligned on an int64 timestamp index, and the CSV loader that
// produces one.
package model

import (
	"fmt"
	"time"

	"ta-kernels/internal/series"
)

// Bar is one OHLCV row.
type Bar struct {
	TS     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Frame is a column-oriented OHLCV table. All columns share one index and
// one length.
type Frame struct {
	Index  []int64 // unix milliseconds, strictly increasing
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// NewFrame builds a frame from rows, validating that timestamps increase.
func NewFrame(bars []Bar) (*Frame, error) {
	f := &Frame{
		Index:  make([]int64, len(bars)),
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}
	for i, b := range bars {
		ts := b.TS.UnixMilli()
		if i > 0 && ts <= f.Index[i-1] {
			return nil, fmt.Errorf("model: bar %d timestamp %d not after %d", i, ts, f.Index[i-1])
		}
		f.Index[i] = ts
		f.Open[i] = b.Open
		f.High[i] = b.High
		f.Low[i] = b.Low
		f.Close[i] = b.Close
		f.Volume[i] = b.Volume
	}
	return f, nil
}

// Len returns the number of bars.
func (f *Frame) Len() int { return len(f.Index) }

// HighSeries returns the high column as an index-aligned series.
func (f *Frame) HighSeries() *series.Series { return mustSeries(f.Index, f.High) }

// LowSeries returns the low column as an index-aligned series.
func (f *Frame) LowSeries() *series.Series { return mustSeries(f.Index, f.Low) }

// CloseSeries returns the close column as an index-aligned series.
func (f *Frame) CloseSeries() *series.Series { return mustSeries(f.Index, f.Close) }

func mustSeries(idx []int64, vals []float64) *series.Series {
	s, err := series.New(idx, vals)
	if err != nil {
		// Columns are built together; a mismatch is a corrupted frame.
		panic(err)
	}
	return s
}
