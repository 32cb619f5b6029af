package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ta-kernels/internal/kernel"
	"ta-kernels/internal/series"
)

// Entry is one indicator request inside a strategy: a kernel name, its
// parameters and the post-processing to apply to every output.
type Entry struct {
	Kernel    string             `yaml:"kernel"`
	Params    map[string]float64 `yaml:"params"`
	Offset    int                `yaml:"offset"`
	Fill      string             `yaml:"fill"` // none|forward|backward|constant
	FillValue float64            `yaml:"fill_value"`
}

// Strategy is a named batch of indicator requests evaluated against one
// frame. Entries are independent of each other.
type Strategy struct {
	Name       string  `yaml:"name"`
	Indicators []Entry `yaml:"indicators"`
}

// LoadStrategy reads and validates a strategy YAML file.
func LoadStrategy(path string) (*Strategy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: read strategy %s: %w", path, err)
	}
	s, err := ParseStrategy(raw)
	if err != nil {
		return nil, fmt.Errorf("engine: strategy %s: %w", path, err)
	}
	return s, nil
}

// ParseStrategy decodes and validates strategy YAML. Unknown kernel names
// and fill methods are config mistakes and rejected here, before any
// evaluation starts.
func ParseStrategy(raw []byte) (*Strategy, error) {
	var s Strategy
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if len(s.Indicators) == 0 {
		return nil, fmt.Errorf("no indicators declared")
	}
	for i, e := range s.Indicators {
		if _, ok := kernel.Lookup(e.Kernel); !ok {
			return nil, fmt.Errorf("indicator %d: unknown kernel %q", i, e.Kernel)
		}
		if _, err := parseFill(e.Fill, e.FillValue); err != nil {
			return nil, fmt.Errorf("indicator %d (%s): %w", i, e.Kernel, err)
		}
	}
	return &s, nil
}

// AllKernels returns a strategy evaluating every registered kernel at its
// defaults. Used by the parity harness and as a smoke-test strategy.
func AllKernels() *Strategy {
	s := &Strategy{Name: "all-kernels"}
	for _, name := range kernel.Names() {
		s.Indicators = append(s.Indicators, Entry{Kernel: name})
	}
	return s
}

func parseFill(method string, value float64) (series.Fill, error) {
	switch method {
	case "", "none":
		return series.Fill{Method: series.FillNone}, nil
	case "forward", "ffill":
		return series.Fill{Method: series.FillForward}, nil
	case "backward", "bfill":
		return series.Fill{Method: series.FillBackward}, nil
	case "constant":
		return series.Fill{Method: series.FillConstant, Value: value}, nil
	default:
		return series.Fill{}, fmt.Errorf("unknown fill method %q", method)
	}
}
