package kernel

import (
	"fmt"
	"sort"
)

// Spec describes one registered kernel: the inputs it consumes, its
// documented defaults, its warm-up length and its evaluator. The Eval
// closures adapt the loosely-typed Params map onto each kernel's typed
// parameter struct.
type Spec struct {
	Name     string
	NeedsHL  bool // consumes high/low in addition to close
	Defaults Params
	Warmup   func(Params) int
	Eval     func(Inputs, Params, Path) Result
}

var registry = map[string]Spec{
	"ssf": {
		Name:     "ssf",
		Defaults: Params{"length": 10, "poles": 2},
		Warmup:   func(p Params) int { return SSFWarmup(SSFParams{Length: p.Int("length"), Poles: p.Int("poles")}) },
		Eval: func(in Inputs, p Params, path Path) Result {
			return SSF(in.Close, SSFParams{Length: p.Int("length"), Poles: p.Int("poles")}, path)
		},
	},
	"rsx": {
		Name:     "rsx",
		Defaults: Params{"length": 14},
		Warmup:   func(p Params) int { return RSXWarmup(RSXParams{Length: p.Int("length")}) },
		Eval: func(in Inputs, p Params, path Path) Result {
			return RSX(in.Close, RSXParams{Length: p.Int("length")}, path)
		},
	},
	"fisher": {
		Name:     "fisher",
		NeedsHL:  true,
		Defaults: Params{"length": 9, "signal": 1},
		Warmup:   func(p Params) int { return FisherWarmup(FisherParams{Length: p.Int("length"), Signal: p.Int("signal")}) },
		Eval: func(in Inputs, p Params, path Path) Result {
			return Fisher(in.High, in.Low, FisherParams{Length: p.Int("length"), Signal: p.Int("signal")}, path)
		},
	},
	"supertrend": {
		Name:     "supertrend",
		NeedsHL:  true,
		Defaults: Params{"length": 7, "multiplier": 3.0},
		Warmup: func(p Params) int {
			return SupertrendWarmup(SupertrendParams{Length: p.Int("length"), Multiplier: p.Float("multiplier")})
		},
		Eval: func(in Inputs, p Params, path Path) Result {
			return Supertrend(in.High, in.Low, in.Close,
				SupertrendParams{Length: p.Int("length"), Multiplier: p.Float("multiplier")}, path)
		},
	},
	"qqe": {
		Name:     "qqe",
		Defaults: Params{"length": 14, "smooth": 5, "factor": 4.236},
		Warmup: func(p Params) int {
			return QQEWarmup(QQEParams{Length: p.Int("length"), Smooth: p.Int("smooth"), Factor: p.Float("factor")})
		},
		Eval: func(in Inputs, p Params, path Path) Result {
			return QQE(in.Close,
				QQEParams{Length: p.Int("length"), Smooth: p.Int("smooth"), Factor: p.Float("factor")}, path)
		},
	},
	"psar": {
		Name:     "psar",
		NeedsHL:  true,
		Defaults: Params{"af0": 0.02, "af": 0.02, "max_af": 0.2},
		Warmup:   func(p Params) int { return PSARWarmup(PSARParams{}) },
		Eval: func(in Inputs, p Params, path Path) Result {
			return PSAR(in.High, in.Low,
				PSARParams{Af0: p.Float("af0"), Af: p.Float("af"), MaxAf: p.Float("max_af")}, path)
		},
	},
	"stc": {
		Name:     "stc",
		Defaults: Params{"tclength": 10, "fast": 12, "slow": 26, "factor": 0.5},
		Warmup: func(p Params) int {
			return STCWarmup(STCParams{TCLength: p.Int("tclength"), Fast: p.Int("fast"), Slow: p.Int("slow"), Factor: p.Float("factor")})
		},
		Eval: func(in Inputs, p Params, path Path) Result {
			return STC(in.Close,
				STCParams{TCLength: p.Int("tclength"), Fast: p.Int("fast"), Slow: p.Int("slow"), Factor: p.Float("factor")}, path)
		},
	},
	"kama": {
		Name:     "kama",
		Defaults: Params{"length": 10, "fast": 2, "slow": 30},
		Warmup: func(p Params) int {
			return KAMAWarmup(KAMAParams{Length: p.Int("length"), Fast: p.Int("fast"), Slow: p.Int("slow")})
		},
		Eval: func(in Inputs, p Params, path Path) Result {
			return KAMA(in.Close,
				KAMAParams{Length: p.Int("length"), Fast: p.Int("fast"), Slow: p.Int("slow")}, path)
		},
	},
	"vidya": {
		Name:     "vidya",
		Defaults: Params{"length": 14},
		Warmup:   func(p Params) int { return VIDYAWarmup(VIDYAParams{Length: p.Int("length")}) },
		Eval: func(in Inputs, p Params, path Path) Result {
			return VIDYA(in.Close, VIDYAParams{Length: p.Int("length")}, path)
		},
	},
	"alma": {
		Name:     "alma",
		Defaults: Params{"length": 10, "sigma": 6.0, "offset": 0.85},
		Warmup: func(p Params) int {
			return ALMAWarmup(ALMAParams{Length: p.Int("length"), Sigma: p.Float("sigma"), Offset: p.Float("offset")})
		},
		Eval: func(in Inputs, p Params, path Path) Result {
			return ALMA(in.Close,
				ALMAParams{Length: p.Int("length"), Sigma: p.Float("sigma"), Offset: p.Float("offset")}, path)
		},
	},
	"hilo": {
		Name:     "hilo",
		NeedsHL:  true,
		Defaults: Params{"high_length": 13, "low_length": 21},
		Warmup: func(p Params) int {
			return HiLoWarmup(HiLoParams{HighLength: p.Int("high_length"), LowLength: p.Int("low_length")})
		},
		Eval: func(in Inputs, p Params, path Path) Result {
			return HiLo(in, HiLoParams{HighLength: p.Int("high_length"), LowLength: p.Int("low_length")}, path)
		},
	},
	"jma": {
		Name:     "jma",
		Defaults: Params{"length": 7, "phase": 0},
		Warmup:   func(p Params) int { return JMAWarmup(JMAParams{Length: p.Int("length")}) },
		Eval: func(in Inputs, p Params, path Path) Result {
			return JMA(in.Close, JMAParams{Length: p.Int("length"), Phase: p.Float("phase")}, path)
		},
	},
}

// Lookup returns the kernel Spec registered under name.
func Lookup(name string) (Spec, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names returns the registered kernel names, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Evaluate dispatches by name after checking input presence and alignment.
// A missing kernel or malformed input set is a caller bug and reported as
// an error; parameter problems never are.
func Evaluate(name string, in Inputs, p Params, path Path) (Result, error) {
	spec, ok := registry[name]
	if !ok {
		return Result{}, fmt.Errorf("kernel: unknown kernel %q", name)
	}
	if in.Close == nil {
		return Result{}, fmt.Errorf("kernel: %s requires a close series", name)
	}
	if spec.NeedsHL {
		if in.High == nil || in.Low == nil {
			return Result{}, fmt.Errorf("kernel: %s requires high and low series", name)
		}
		if in.High.Len() != in.Close.Len() || in.Low.Len() != in.Close.Len() {
			return Result{}, fmt.Errorf("kernel: %s input lengths differ: high=%d low=%d close=%d",
				name, in.High.Len(), in.Low.Len(), in.Close.Len())
		}
	}
	return spec.Eval(in, p, path), nil
}
