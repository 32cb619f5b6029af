package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds all Prometheus metrics for the evaluation engine.
type Metrics struct {
	EvaluationsTotal  *prometheus.CounterVec // labels: kernel, path
	EvaluationErrors  *prometheus.CounterVec // labels: kernel
	EvaluationDur     *prometheus.HistogramVec
	StrategyRunsTotal prometheus.Counter
	StrategyRunDur    prometheus.Histogram

	// Parity harness metrics
	ParityChecksTotal prometheus.Counter
	ParityMaxDiff     *prometheus.GaugeVec // labels: kernel

	SeriesLength prometheus.Gauge
}

// New registers and returns all engine metrics on a fresh registry.
func New() (*Metrics, *prometheus.Registry) {
	m := &Metrics{
		EvaluationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takernels_evaluations_total",
			Help: "Kernel evaluations completed (by kernel and path)",
		}, []string{"kernel", "path"}),
		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "takernels_evaluation_errors_total",
			Help: "Kernel evaluations rejected for malformed inputs",
		}, []string{"kernel"}),
		EvaluationDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "takernels_evaluation_duration_seconds",
			Help:    "Kernel evaluation latency",
			Buckets: []float64{0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}, []string{"kernel"}),
		StrategyRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "takernels_strategy_runs_total",
			Help: "Full strategy applications completed",
		}),
		StrategyRunDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "takernels_strategy_run_duration_seconds",
			Help:    "End-to-end strategy application latency",
			Buckets: prometheus.DefBuckets,
		}),
		ParityChecksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "takernels_parity_checks_total",
			Help: "Dual-path parity comparisons executed",
		}),
		ParityMaxDiff: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "takernels_parity_max_abs_diff",
			Help: "Largest absolute difference seen between execution paths",
		}, []string{"kernel"}),
		SeriesLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "takernels_series_length",
			Help: "Length of the most recently evaluated input series",
		}),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		m.EvaluationsTotal,
		m.EvaluationErrors,
		m.EvaluationDur,
		m.StrategyRunsTotal,
		m.StrategyRunDur,
		m.ParityChecksTotal,
		m.ParityMaxDiff,
		m.SeriesLength,
	)

	return m, reg
}

// HealthStatus represents engine health for the /healthz endpoint.
type HealthStatus struct {
	mu sync.RWMutex

	StrategyLoaded bool
	KernelCount    int
	LastRunAt      time.Time
	LastRunID      string
	StartedAt      time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now()}
}

func (h *HealthStatus) SetStrategyLoaded(v bool) {
	h.mu.Lock()
	h.StrategyLoaded = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetKernelCount(n int) {
	h.mu.Lock()
	h.KernelCount = n
	h.mu.Unlock()
}

func (h *HealthStatus) RecordRun(runID string) {
	h.mu.Lock()
	h.LastRunAt = time.Now()
	h.LastRunID = runID
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	lastRun := ""
	if !h.LastRunAt.IsZero() {
		lastRun = h.LastRunAt.Format(time.RFC3339)
	}

	status := struct {
		Status         string `json:"status"`
		Uptime         string `json:"uptime"`
		StrategyLoaded bool   `json:"strategy_loaded"`
		KernelCount    int    `json:"kernel_count"`
		LastRunAt      string `json:"last_run_at"`
		LastRunID      string `json:"last_run_id"`
	}{
		Status:         "healthy",
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		StrategyLoaded: h.StrategyLoaded,
		KernelCount:    h.KernelCount,
		LastRunAt:      lastRun,
		LastRunID:      h.LastRunID,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  zerolog.Logger
}

// NewServer creates a metrics and health server backed by the registry.
func NewServer(addr string, reg *prometheus.Registry, health *HealthStatus, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		addr: addr,
		log:  log,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("metrics server listening")
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("metrics server error")
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
