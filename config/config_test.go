package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Path != "optimized" {
		t.Errorf("Path = %q, want optimized", cfg.Path)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.ParityBars != 2048 {
		t.Errorf("ParityBars = %d", cfg.ParityBars)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TA_PATH", "reference")
	t.Setenv("TA_PARITY_BARS", "512")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.Path != "reference" {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.ParityBars != 512 {
		t.Errorf("ParityBars = %d", cfg.ParityBars)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("TA_PARITY_BARS", "lots")
	if cfg := Load(); cfg.ParityBars != 2048 {
		t.Errorf("ParityBars = %d, want default", cfg.ParityBars)
	}
}
