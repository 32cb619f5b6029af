// Command tarun evaluates indicator kernels over OHLCV data: apply a
// strategy to a CSV file, run the dual-path parity harness, or list the
// registered kernels.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ta-kernels/config"
	"ta-kernels/internal/engine"
	"ta-kernels/internal/kernel"
	"ta-kernels/internal/logger"
	"ta-kernels/internal/metrics"
	"ta-kernels/internal/model"
)

func main() {
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "tarun",
		Short:         "Evaluate indicator kernels over OHLCV data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("path", cfg.Path, "execution path: optimized or reference")
	root.PersistentFlags().String("log-level", cfg.LogLevel, "log level")

	root.AddCommand(runCmd(cfg), parityCmd(cfg), listCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tarun:", err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

func buildEngine(cmd *cobra.Command, serveMetrics bool, metricsAddr string) (*engine.Engine, *metrics.Server, *metrics.HealthStatus) {
	pathFlag, _ := cmd.Flags().GetString("path")
	levelFlag, _ := cmd.Flags().GetString("log-level")
	log := logger.Init("tarun", logger.ParseLevel(levelFlag))

	m, reg := metrics.New()
	health := metrics.NewHealthStatus()
	eng := engine.New(engine.Config{
		Path:    kernel.ParsePath(pathFlag),
		Log:     log,
		Metrics: m,
		Health:  health,
	})

	var srv *metrics.Server
	if serveMetrics {
		srv = metrics.NewServer(metricsAddr, reg, health, log)
		srv.Start()
	}
	return eng, srv, health
}

func runCmd(cfg *config.Config) *cobra.Command {
	var (
		dataFile     string
		strategyFile string
		serve        bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Apply a strategy to a CSV data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, srv, health := buildEngine(cmd, serve, cfg.MetricsAddr)
			if srv != nil {
				defer func() {
					sctx, scancel := context.WithTimeout(context.Background(), 3*time.Second)
					srv.Stop(sctx)
					scancel()
				}()
			}

			frame, err := model.ReadCSV(dataFile)
			if err != nil {
				return err
			}

			strat := engine.AllKernels()
			if strategyFile != "" {
				if strat, err = engine.LoadStrategy(strategyFile); err != nil {
					return err
				}
				health.SetStrategyLoaded(true)
			}

			results, err := eng.Apply(ctx, frame, strat)
			if err != nil {
				return err
			}
			for _, res := range results {
				primary := res.Primary()
				defined := primary.Len() - primary.LeadingNaNs()
				last := "-"
				if n := primary.Len(); n > 0 && primary.Defined(n-1) {
					last = fmt.Sprintf("%.6f", primary.At(n-1))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-28s outputs=%d defined=%d last=%s\n",
					res.Name, len(res.Outputs), defined, last)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", cfg.DataFile, "OHLCV CSV file")
	cmd.Flags().StringVar(&strategyFile, "strategy", cfg.StrategyFile, "strategy YAML file (default: all kernels)")
	cmd.Flags().BoolVar(&serve, "serve-metrics", false, "expose /metrics and /healthz while running")
	cmd.MarkFlagRequired("data")
	return cmd
}

// parityTolerances maps each kernel to its dual-path agreement bound. The
// single-window filters hold a tighter bound than the multi-stage kernels.
var parityTolerances = map[string]float64{
	"ssf":        1e-10,
	"alma":       1e-10,
	"rsx":        1e-8,
	"fisher":     1e-8,
	"supertrend": 1e-8,
	"qqe":        1e-8,
	"psar":       1e-8,
	"stc":        1e-8,
	"kama":       1e-8,
	"vidya":      1e-8,
	"hilo":       1e-8,
	"jma":        1e-8,
}

func parityCmd(cfg *config.Config) *cobra.Command {
	var (
		bars int
		seed int64
	)
	cmd := &cobra.Command{
		Use:   "parity",
		Short: "Compare optimized and reference paths for every kernel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			eng, _, _ := buildEngine(cmd, false, "")
			frame := model.SyntheticFrame(bars, seed)

			failed := 0
			for _, name := range kernel.Names() {
				tol := parityTolerances[name]
				rep, err := eng.CheckParity(ctx, name, frame, nil, tol)
				if err != nil {
					return err
				}
				status := "ok"
				if !rep.OK {
					status = "FAIL"
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-4s max|diff|=%.3e tol=%.0e (%s)\n",
					name, status, rep.MaxAbsDiff, rep.Tolerance, rep.Output)
			}
			if failed > 0 {
				return fmt.Errorf("%d kernel(s) failed parity", failed)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&bars, "bars", cfg.ParityBars, "number of synthetic bars")
	cmd.Flags().Int64Var(&seed, "seed", cfg.ParitySeed, "random walk seed")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered kernels and their defaults",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range kernel.Names() {
				spec, _ := kernel.Lookup(name)
				keys := make([]string, 0, len(spec.Defaults))
				for k := range spec.Defaults {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s", name)
				for _, k := range keys {
					fmt.Fprintf(cmd.OutOrStdout(), " %s=%g", k, spec.Defaults[k])
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
		},
	}
}
