package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ta-kernels/internal/kernel"
	"ta-kernels/internal/model"
)

func testEngine(path kernel.Path) *Engine {
	return New(Config{Path: path, Log: zerolog.Nop()})
}

func TestEvaluate_UnknownKernel(t *testing.T) {
	eng := testEngine(kernel.PathOptimized)
	frame := model.SyntheticFrame(100, 1)
	_, err := eng.Evaluate(context.Background(), "nope", frame, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kernel")
}

func TestEvaluate_Defaults(t *testing.T) {
	eng := testEngine(kernel.PathOptimized)
	frame := model.SyntheticFrame(300, 2)
	res, err := eng.Evaluate(context.Background(), "rsx", frame, nil)
	require.NoError(t, err)
	assert.Equal(t, "RSX_14", res.Name)
	assert.Equal(t, frame.Len(), res.Primary().Len())
}

func TestApply_PreservesDeclarationOrder(t *testing.T) {
	eng := testEngine(kernel.PathOptimized)
	frame := model.SyntheticFrame(400, 3)
	strat := &Strategy{
		Name: "ordered",
		Indicators: []Entry{
			{Kernel: "supertrend"},
			{Kernel: "rsx", Params: map[string]float64{"length": 7}},
			{Kernel: "alma"},
		},
	}
	results, err := eng.Apply(context.Background(), frame, strat)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "SUPERT_7_3.0", results[0].Name)
	assert.Equal(t, "RSX_7", results[1].Name)
	assert.Equal(t, "ALMA_10_6.0_0.85", results[2].Name)
}

func TestApply_OffsetAndFill(t *testing.T) {
	eng := testEngine(kernel.PathOptimized)
	frame := model.SyntheticFrame(200, 4)
	strat := &Strategy{
		Name: "post",
		Indicators: []Entry{
			{Kernel: "kama", Offset: 2, Fill: "constant", FillValue: -1},
		},
	}
	results, err := eng.Apply(context.Background(), frame, strat)
	require.NoError(t, err)

	out := results[0].Primary()
	// The shifted-and-filled output has no NaNs left.
	for i := 0; i < out.Len(); i++ {
		assert.False(t, out.At(i) != out.At(i), "NaN survived fill at %d", i)
	}
	// Positions vacated by the shift take the fill constant.
	assert.Equal(t, -1.0, out.At(0))

	// Cross-check the shift against an unshifted evaluation.
	plain, err := eng.Evaluate(context.Background(), "kama", frame, nil)
	require.NoError(t, err)
	assert.Equal(t, plain.Primary().At(50), out.At(52))
}

func TestApply_AllKernels(t *testing.T) {
	eng := testEngine(kernel.PathOptimized)
	frame := model.SyntheticFrame(600, 5)
	results, err := eng.Apply(context.Background(), frame, AllKernels())
	require.NoError(t, err)
	require.Len(t, results, len(kernel.Names()))
	for i, res := range results {
		assert.NotEmpty(t, res.Outputs, "kernel %d returned no outputs", i)
	}
}

func TestCheckParity_AllKernels(t *testing.T) {
	eng := testEngine(kernel.PathOptimized)
	frame := model.SyntheticFrame(1024, 6)
	for _, name := range kernel.Names() {
		tol := 1e-8
		if name == "ssf" || name == "alma" {
			tol = 1e-10
		}
		rep, err := eng.CheckParity(context.Background(), name, frame, nil, tol)
		require.NoError(t, err, name)
		assert.True(t, rep.OK, "%s: max |diff| %.3e over tolerance %.0e (%s)",
			name, rep.MaxAbsDiff, rep.Tolerance, rep.Output)
	}
}

func TestParseStrategy(t *testing.T) {
	raw := `
name: demo
indicators:
  - kernel: supertrend
    params:
      length: 10
      multiplier: 2.5
  - kernel: rsx
    offset: 1
    fill: forward
`
	s, err := ParseStrategy([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name)
	require.Len(t, s.Indicators, 2)
	assert.Equal(t, 10.0, s.Indicators[0].Params["length"])
	assert.Equal(t, "forward", s.Indicators[1].Fill)
}

func TestParseStrategy_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"no indicators", "name: empty\n", "no indicators"},
		{"unknown kernel", "indicators:\n  - kernel: macd\n", "unknown kernel"},
		{"bad fill", "indicators:\n  - kernel: rsx\n    fill: sideways\n", "unknown fill"},
		{"bad yaml", "indicators: [", "yaml"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseStrategy([]byte(c.raw))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), c.want) || c.want == "yaml")
		})
	}
}

func TestAllKernels_CoversRegistry(t *testing.T) {
	s := AllKernels()
	assert.Len(t, s.Indicators, len(kernel.Names()))
}
