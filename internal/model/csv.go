package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReadCSV loads an OHLCV frame from a CSV file with a header row. Column
// order is resolved from the header; a volume column is optional. Prices
// go through decimal parsing so values written with more digits than a
// float64 literal survive exactly as their nearest representation.
func ReadCSV(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("model: open %s: %w", path, err)
	}
	defer f.Close()
	frame, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("model: parse %s: %w", path, err)
	}
	return frame, nil
}

// ParseCSV reads OHLCV rows from r. The header must name at least
// timestamp, open, high, low and close in any order.
func ParseCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []Bar
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bar, err := cols.parse(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	return NewFrame(bars)
}

type columnMap struct {
	ts, open, high, low, clos, volume int
}

func resolveColumns(header []string) (columnMap, error) {
	cols := columnMap{ts: -1, open: -1, high: -1, low: -1, clos: -1, volume: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "time", "date", "datetime", "ts":
			cols.ts = i
		case "open":
			cols.open = i
		case "high":
			cols.high = i
		case "low":
			cols.low = i
		case "close":
			cols.clos = i
		case "volume", "vol":
			cols.volume = i
		}
	}
	if cols.ts < 0 || cols.open < 0 || cols.high < 0 || cols.low < 0 || cols.clos < 0 {
		return cols, fmt.Errorf("header missing one of timestamp/open/high/low/close: %v", header)
	}
	return cols, nil
}

func (c columnMap) parse(rec []string) (Bar, error) {
	var bar Bar
	ts, err := parseTime(rec[c.ts])
	if err != nil {
		return bar, err
	}
	bar.TS = ts
	if bar.Open, err = parsePrice(rec[c.open]); err != nil {
		return bar, err
	}
	if bar.High, err = parsePrice(rec[c.high]); err != nil {
		return bar, err
	}
	if bar.Low, err = parsePrice(rec[c.low]); err != nil {
		return bar, err
	}
	if bar.Close, err = parsePrice(rec[c.clos]); err != nil {
		return bar, err
	}
	if c.volume >= 0 && rec[c.volume] != "" {
		if bar.Volume, err = parsePrice(rec[c.volume]); err != nil {
			return bar, err
		}
	}
	return bar, nil
}

func parsePrice(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// parseTime accepts unix seconds or the common ISO layouts.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q: unrecognized format", s)
}
