package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSV(t *testing.T) {
	raw := `timestamp,open,high,low,close,volume
2024-01-02 09:15:00,100.5,101.25,99.75,100.95,1200
2024-01-02 09:16:00,100.95,102.00,100.50,101.80,900
2024-01-02 09:17:00,101.80,101.90,100.10,100.40,1500
`
	f, err := ParseCSV(strings.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())
	assert.Equal(t, 100.5, f.Open[0])
	assert.Equal(t, 101.25, f.High[0])
	assert.Equal(t, 100.40, f.Close[2])
	assert.Equal(t, 900.0, f.Volume[1])
	assert.True(t, f.Index[0] < f.Index[1])
}

func TestParseCSV_ColumnOrderAndCase(t *testing.T) {
	raw := `Close,LOW,High,Time
10.5,10.0,11.0,1704186900
10.7,10.2,11.2,1704186960
`
	// Open column missing: rejected.
	_, err := ParseCSV(strings.NewReader(raw))
	require.Error(t, err)

	raw = `Close,LOW,High,Open,Time
10.5,10.0,11.0,10.1,1704186900
10.7,10.2,11.2,10.5,1704186960
`
	f, err := ParseCSV(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 10.5, f.Close[0])
	assert.Equal(t, 10.1, f.Open[0])
	assert.Equal(t, int64(1704186900000), f.Index[0])
	// Volume column is optional and defaults to zero.
	assert.Equal(t, 0.0, f.Volume[0])
}

func TestParseCSV_BadRow(t *testing.T) {
	raw := `timestamp,open,high,low,close
1704186900,10,11,9,10.5
1704186960,ten,11,9,10.5
`
	_, err := ParseCSV(strings.NewReader(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestNewFrame_RejectsNonIncreasingIndex(t *testing.T) {
	bars := []Bar{
		{TS: timeFromUnix(100), Close: 1},
		{TS: timeFromUnix(100), Close: 2},
	}
	_, err := NewFrame(bars)
	require.Error(t, err)
}

func TestSyntheticFrame_Deterministic(t *testing.T) {
	a := SyntheticFrame(256, 7)
	b := SyntheticFrame(256, 7)
	require.Equal(t, a.Len(), b.Len())
	for i := 0; i < a.Len(); i++ {
		assert.Equal(t, a.Close[i], b.Close[i])
		assert.LessOrEqual(t, a.Low[i], a.High[i])
	}
	c := SyntheticFrame(256, 8)
	assert.NotEqual(t, a.Close[10], c.Close[10])
}

func TestFrame_SeriesAccessors(t *testing.T) {
	f := SyntheticFrame(32, 9)
	cs := f.CloseSeries()
	require.Equal(t, 32, cs.Len())
	assert.Equal(t, f.Close[5], cs.At(5))
	assert.Equal(t, f.Index[5], cs.TimeAt(5))
}

func timeFromUnix(s int64) time.Time { return time.Unix(s, 0).UTC() }
