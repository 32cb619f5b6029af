// Package engine evaluates kernels against OHLCV frames: single named
// evaluations, concurrent strategy application and the dual-path parity
// harness.
package engine

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ta-kernels/internal/kernel"
	"ta-kernels/internal/logger"
	"ta-kernels/internal/metrics"
	"ta-kernels/internal/model"
)

// Config carries the engine's collaborators. Metrics and Health may be nil
// when observability is not wired (tests, one-shot CLI runs).
type Config struct {
	Path    kernel.Path
	Log     zerolog.Logger
	Metrics *metrics.Metrics
	Health  *metrics.HealthStatus
}

// Engine runs kernel evaluations on a fixed execution path.
type Engine struct {
	path    kernel.Path
	log     zerolog.Logger
	metrics *metrics.Metrics
	health  *metrics.HealthStatus
}

// New creates an engine.
func New(cfg Config) *Engine {
	if cfg.Health != nil {
		cfg.Health.SetKernelCount(len(kernel.Names()))
	}
	return &Engine{
		path:    cfg.Path,
		log:     cfg.Log,
		metrics: cfg.Metrics,
		health:  cfg.Health,
	}
}

// Evaluate runs one kernel by name against the frame's price columns.
func (e *Engine) Evaluate(ctx context.Context, name string, frame *model.Frame, params kernel.Params) (kernel.Result, error) {
	in := kernel.Inputs{
		High:  frame.HighSeries(),
		Low:   frame.LowSeries(),
		Close: frame.CloseSeries(),
	}
	return e.evaluate(ctx, name, in, params, e.path)
}

func (e *Engine) evaluate(ctx context.Context, name string, in kernel.Inputs, params kernel.Params, path kernel.Path) (kernel.Result, error) {
	log := logger.FromContext(ctx, e.log)
	start := time.Now()
	res, err := kernel.Evaluate(name, in, params, path)
	elapsed := time.Since(start)
	if err != nil {
		if e.metrics != nil {
			e.metrics.EvaluationErrors.WithLabelValues(name).Inc()
		}
		log.Error().Err(err).Str("kernel", name).Msg("evaluation rejected")
		return kernel.Result{}, err
	}
	if e.metrics != nil {
		e.metrics.EvaluationsTotal.WithLabelValues(name, path.String()).Inc()
		e.metrics.EvaluationDur.WithLabelValues(name).Observe(elapsed.Seconds())
		e.metrics.SeriesLength.Set(float64(in.Close.Len()))
	}
	log.Debug().
		Str("kernel", name).
		Str("path", path.String()).
		Int("bars", in.Close.Len()).
		Dur("elapsed", elapsed).
		Msg("kernel evaluated")
	return res, nil
}

// Apply evaluates every strategy entry against the frame concurrently.
// Results come back in declaration order; post-processing (offset, fill)
// runs per entry. The first error cancels nothing already running but is
// reported once all entries finish.
func (e *Engine) Apply(ctx context.Context, frame *model.Frame, s *Strategy) ([]kernel.Result, error) {
	runID := logger.NewRunID()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx, e.log)
	start := time.Now()

	in := kernel.Inputs{
		High:  frame.HighSeries(),
		Low:   frame.LowSeries(),
		Close: frame.CloseSeries(),
	}

	results := make([]kernel.Result, len(s.Indicators))
	errs := make([]error, len(s.Indicators))
	var wg sync.WaitGroup
	for i, entry := range s.Indicators {
		wg.Add(1)
		go func(i int, entry Entry) {
			defer wg.Done()
			res, err := e.evaluate(ctx, entry.Kernel, in, entry.Params, e.path)
			if err != nil {
				errs[i] = err
				return
			}
			fill, _ := parseFill(entry.Fill, entry.FillValue)
			results[i] = res.PostProcess(entry.Offset, fill)
		}(i, entry)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if e.metrics != nil {
		e.metrics.StrategyRunsTotal.Inc()
		e.metrics.StrategyRunDur.Observe(time.Since(start).Seconds())
	}
	if e.health != nil {
		e.health.RecordRun(runID)
	}
	log.Info().
		Str("strategy", s.Name).
		Int("indicators", len(s.Indicators)).
		Int("bars", frame.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("strategy applied")
	return results, nil
}

// ParityReport is the outcome of comparing both execution paths for one
// kernel on the same inputs.
type ParityReport struct {
	Kernel     string
	Output     string
	MaxAbsDiff float64
	Tolerance  float64
	OK         bool
}

// CheckParity evaluates one kernel on both paths and reports the largest
// absolute difference across all outputs. NaNs must match positionally.
func (e *Engine) CheckParity(ctx context.Context, name string, frame *model.Frame, params kernel.Params, tol float64) (ParityReport, error) {
	in := kernel.Inputs{
		High:  frame.HighSeries(),
		Low:   frame.LowSeries(),
		Close: frame.CloseSeries(),
	}
	opt, err := e.evaluate(ctx, name, in, params, kernel.PathOptimized)
	if err != nil {
		return ParityReport{}, err
	}
	ref, err := e.evaluate(ctx, name, in, params, kernel.PathReference)
	if err != nil {
		return ParityReport{}, err
	}

	rep := ParityReport{Kernel: name, Tolerance: tol, OK: true}
	for oi, o := range opt.Outputs {
		ov := o.S.Values()
		rv := ref.Outputs[oi].S.Values()
		for i := range ov {
			a, b := ov[i], rv[i]
			if math.IsNaN(a) != math.IsNaN(b) {
				rep.OK = false
				rep.Output = o.Name
				rep.MaxAbsDiff = math.Inf(1)
				break
			}
			if math.IsNaN(a) {
				continue
			}
			if d := math.Abs(a - b); d > rep.MaxAbsDiff {
				rep.MaxAbsDiff = d
				rep.Output = o.Name
			}
		}
	}
	if rep.MaxAbsDiff > tol {
		rep.OK = false
	}
	if e.metrics != nil {
		e.metrics.ParityChecksTotal.Inc()
		e.metrics.ParityMaxDiff.WithLabelValues(name).Set(rep.MaxAbsDiff)
	}
	return rep, nil
}
