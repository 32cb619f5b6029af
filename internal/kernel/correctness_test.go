package kernel

import (
	"math"
	"testing"

	"ta-kernels/internal/series"
)

func constSeries(t *testing.T, n int, v float64) *series.Series {
	t.Helper()
	idx := make([]int64, n)
	vals := make([]float64, n)
	for i := range idx {
		idx[i] = int64(i)
		vals[i] = v
	}
	s, err := series.New(idx, vals)
	if err != nil {
		t.Fatalf("series.New: %v", err)
	}
	return s
}

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.10f, want %.10f (tol=%g)", label, got, want, tol)
	}
}

func assertBounded(t *testing.T, label string, s *series.Series, lo, hi float64) {
	t.Helper()
	for i := 0; i < s.Len(); i++ {
		v := s.At(i)
		if math.IsNaN(v) {
			continue
		}
		if v < lo || v > hi {
			t.Fatalf("%s[%d]=%v outside [%v, %v]", label, i, v, lo, hi)
		}
	}
}

// ────────────────────────────────────────────────────────────
// Filter correctness
// ────────────────────────────────────────────────────────────

func TestSSF_ConstantInput_PassesThrough(t *testing.T) {
	// A unity-gain low-pass filter must reproduce a constant signal.
	s := constSeries(t, 200, 100.0)
	for _, poles := range []int{2, 3} {
		res := SSF(s, SSFParams{Length: 10, Poles: poles}, PathOptimized)
		out := res.Primary()
		for i := 20; i < out.Len(); i++ {
			assertClose(t, "SSF constant", out.At(i), 100.0, 1e-6)
		}
	}
}

func TestSSF_NoWarmup(t *testing.T) {
	in := genOHLC(t, 50, 20)
	res := SSF(in.Close, SSFParams{Length: 10, Poles: 2}, PathOptimized)
	if n := res.Primary().LeadingNaNs(); n != 0 {
		t.Errorf("SSF leading NaNs = %d, want 0", n)
	}
}

func TestALMA_ConstantInput(t *testing.T) {
	// Normalized weights reproduce a constant signal exactly.
	s := constSeries(t, 60, 42.5)
	out := ALMA(s, ALMAParams{Length: 10, Sigma: 6, Offset: 0.85}, PathOptimized).Primary()
	for i := out.LeadingNaNs(); i < out.Len(); i++ {
		assertClose(t, "ALMA constant", out.At(i), 42.5, 1e-10)
	}
}

func TestKAMA_TrendingInput_TracksPrice(t *testing.T) {
	// On a steadily rising series the efficiency ratio is 1 and KAMA
	// behaves like the fast EMA, staying close to price.
	n := 300
	idx := make([]int64, n)
	vals := make([]float64, n)
	for i := range vals {
		idx[i] = int64(i)
		vals[i] = 100 + float64(i)
	}
	s, _ := series.New(idx, vals)
	out := KAMA(s, KAMAParams{Length: 10, Fast: 2, Slow: 30}, PathOptimized).Primary()
	// After settling, lag behind a unit-slope ramp is bounded.
	if diff := vals[n-1] - out.At(n-1); diff > 2.0 {
		t.Errorf("KAMA lag on ramp = %.4f, want <= 2.0", diff)
	}
}

func TestJMA_SmoothingConstants(t *testing.T) {
	// beta derives from the full period, not the halved one the window
	// constants use: beta = 0.45*(N-1) / (0.45*(N-1) + 2).
	c := newJMAConsts(JMAParams{Length: 7}.normalize())
	assertClose(t, "beta", c.beta, 2.7/4.7, 1e-12)
	assertClose(t, "pr", c.pr, 1.5, 1e-12)

	c = newJMAConsts(JMAParams{Length: 14}.normalize())
	assertClose(t, "beta n=14", c.beta, 0.45*13/(0.45*13+2), 1e-12)

	c = newJMAConsts(JMAParams{Length: 7, Phase: 150}.normalize())
	assertClose(t, "pr clamp high", c.pr, 2.5, 1e-12)
	c = newJMAConsts(JMAParams{Length: 7, Phase: -150}.normalize())
	assertClose(t, "pr clamp low", c.pr, 0.5, 1e-12)
}

func TestJMA_StepResponse(t *testing.T) {
	// Flat-at-zero prefix, unit step on the last bar. Through the flat
	// prefix all state is zero; on the step bar the band deltas are
	// equal so volatility stays zero, alpha collapses to beta, and the
	// recurrence closes to out = (1-beta)^3 * (1 + pr*beta).
	n := 8
	idx := make([]int64, n)
	vals := make([]float64, n)
	for i := range idx {
		idx[i] = int64(i)
	}
	vals[n-1] = 1.0
	s, _ := series.New(idx, vals)

	beta := 2.7 / 4.7
	want := math.Pow(1-beta, 3) * (1 + 1.5*beta)
	for _, path := range []Path{PathOptimized, PathReference} {
		out := JMA(s, JMAParams{Length: 7}, path).Primary()
		assertClose(t, "JMA flat prefix", out.At(n-2), 0.0, 1e-12)
		assertClose(t, "JMA step bar", out.At(n-1), want, 1e-12)
	}
}

// ────────────────────────────────────────────────────────────
// Oscillator range invariants
// ────────────────────────────────────────────────────────────

func TestRSX_Bounded(t *testing.T) {
	in := genOHLC(t, 1000, 21)
	out := RSX(in.Close, RSXParams{Length: 14}, PathOptimized).Primary()
	assertBounded(t, "RSX", out, 0, 100)
}

func TestSTC_Bounded(t *testing.T) {
	in := genOHLC(t, 1000, 22)
	out := STC(in.Close, STCParams{}, PathOptimized).Primary()
	assertBounded(t, "STC", out, 0, 100)
}

func TestQQE_RSIMA_Bounded(t *testing.T) {
	in := genOHLC(t, 1000, 23)
	res := QQE(in.Close, QQEParams{}, PathOptimized)
	// The smoothed RSI leg stays in RSI range.
	last := res.Outputs[len(res.Outputs)-1].S
	assertBounded(t, "QQE RSIMA", last, 0, 100)
}

// ────────────────────────────────────────────────────────────
// State machine invariants
// ────────────────────────────────────────────────────────────

func TestPSAR_RisingMarket_NeverReverses(t *testing.T) {
	n := 100
	idx := make([]int64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	for i := range idx {
		idx[i] = int64(i)
		high[i] = 101 + float64(i)
		low[i] = 99 + float64(i)
	}
	hs, _ := series.New(idx, high)
	ls, _ := series.New(idx, low)
	res := PSAR(hs, ls, PSARParams{}, PathOptimized)

	rev := res.Get("PSARr_0.02_0.2")
	for i := 1; i < n; i++ {
		if rev.At(i) != 0 {
			t.Fatalf("reversal at bar %d in a strictly rising market", i)
		}
	}
	// Long leg populated, short leg empty.
	short := res.Get("PSARs_0.02_0.2")
	for i := 1; i < n; i++ {
		if !math.IsNaN(short.At(i)) {
			t.Fatalf("short SAR defined at bar %d while trending up", i)
		}
	}
}

func TestPSAR_AfResetsOnReversal(t *testing.T) {
	in := genOHLC(t, 500, 24)
	res := PSAR(in.High, in.Low, PSARParams{}, PathOptimized)
	af := res.Get("PSARaf_0.02_0.2")
	rev := res.Get("PSARr_0.02_0.2")
	sawReversal := false
	for i := 1; i < af.Len(); i++ {
		if rev.At(i) == 1 {
			sawReversal = true
			assertClose(t, "af at reversal", af.At(i), 0.02, 1e-12)
		}
		if v := af.At(i); v < 0.02-1e-12 || v > 0.2+1e-12 {
			t.Fatalf("af[%d]=%v outside [af0, max_af]", i, v)
		}
	}
	if !sawReversal {
		t.Fatal("fixture produced no reversals; pick another seed")
	}
}

func TestSupertrend_LegsMirrorDirection(t *testing.T) {
	in := genOHLC(t, 800, 25)
	res := Supertrend(in.High, in.Low, in.Close, SupertrendParams{}, PathOptimized)
	line := res.Primary()
	dir := res.Get("SUPERTd_7_3.0")
	long := res.Get("SUPERTl_7_3.0")
	short := res.Get("SUPERTs_7_3.0")

	for i := 1; i < line.Len(); i++ {
		d := dir.At(i)
		if d != 1 && d != -1 {
			t.Fatalf("direction[%d]=%v, want ±1", i, d)
		}
		if math.IsNaN(line.At(i)) {
			continue
		}
		if d == 1 && (math.IsNaN(long.At(i)) || !math.IsNaN(short.At(i))) {
			t.Fatalf("bar %d: long regime but legs disagree", i)
		}
		if d == -1 && (math.IsNaN(short.At(i)) || !math.IsNaN(long.At(i))) {
			t.Fatalf("bar %d: short regime but legs disagree", i)
		}
	}
}

func TestSupertrend_CoreRatchet(t *testing.T) {
	// Hand-walked band scenario:
	//   bar 1  hold, raw lower 8.5 ratchets up to 9
	//   bar 2  hold, raw lower 9.5 stands
	//   bar 3  close 8 under the long stop -> short, line on upper 11.5
	//   bar 4  hold, raw upper 13 ratchets down to 11.5
	//   bar 5  close 12 over the short stop -> long again
	idx := []int64{1, 2, 3, 4, 5, 6}
	mk := func(vals []float64) *series.Series {
		s, err := series.New(idx, vals)
		if err != nil {
			t.Fatal(err)
		}
		return s
	}
	closes := mk([]float64{10, 10, 10, 8, 8, 12})
	upper := mk([]float64{12, 12, 12, 11.5, 13, 12.8})
	lower := mk([]float64{9, 8.5, 9.5, 7, 7, 9})

	res := SupertrendFromBands(closes, upper, lower, SupertrendParams{})
	line := res.Primary()
	dir := res.Get("SUPERTd_7_3.0")

	wantDir := []float64{1, 1, 1, -1, -1, 1}
	wantLine := []float64{math.NaN(), 9, 9.5, 11.5, 11.5, 9}
	for i := range wantDir {
		if dir.At(i) != wantDir[i] {
			t.Errorf("dir[%d]=%v, want %v", i, dir.At(i), wantDir[i])
		}
		if math.IsNaN(wantLine[i]) {
			if !math.IsNaN(line.At(i)) {
				t.Errorf("line[%d]=%v, want NaN", i, line.At(i))
			}
			continue
		}
		assertClose(t, "supertrend line", line.At(i), wantLine[i], 1e-12)
	}
}

func TestHiLo_RegimeHold(t *testing.T) {
	in := genOHLC(t, 800, 26)
	p := HiLoParams{HighLength: 13, LowLength: 21}
	res := HiLo(in, p, PathOptimized)
	line := res.Primary()
	dir := res.Get("HILOd_13_21")
	warm := HiLoWarmup(p)

	for i := warm + 1; i < line.Len(); i++ {
		d := dir.At(i)
		if d != 1 && d != -1 {
			t.Fatalf("direction[%d]=%v, want ±1", i, d)
		}
		// Unchanged regime with an unchanged line means the hold branch
		// fired; a regime change must always come with a fresh band value.
		if d != dir.At(i-1) && line.At(i) == line.At(i-1) {
			t.Fatalf("bar %d: regime flipped without a new band value", i)
		}
	}
}

func TestFisher_SignalIsShiftedFisher(t *testing.T) {
	in := genOHLC(t, 300, 27)
	res := Fisher(in.High, in.Low, FisherParams{Length: 9, Signal: 1}, PathOptimized)
	fisher := res.Primary()
	signal := res.Get("FISHERTs_9_1")
	for i := 1; i < fisher.Len(); i++ {
		a, b := signal.At(i), fisher.At(i-1)
		if math.IsNaN(a) != math.IsNaN(b) {
			t.Fatalf("bar %d: signal NaN mismatch", i)
		}
		if !math.IsNaN(a) && a != b {
			t.Fatalf("bar %d: signal %.10f != prior fisher %.10f", i, a, b)
		}
	}
}

// ────────────────────────────────────────────────────────────
// Warm-up policy
// ────────────────────────────────────────────────────────────

func TestWarmupCounts(t *testing.T) {
	in := genOHLC(t, 600, 28)

	cases := []struct {
		name string
		want int
		got  *series.Series
	}{
		{"ssf", SSFWarmup(SSFParams{}), SSF(in.Close, SSFParams{}, PathOptimized).Primary()},
		{"rsx", RSXWarmup(RSXParams{}), RSX(in.Close, RSXParams{}, PathOptimized).Primary()},
		{"fisher", FisherWarmup(FisherParams{}), Fisher(in.High, in.Low, FisherParams{}, PathOptimized).Primary()},
		{"supertrend", SupertrendWarmup(SupertrendParams{}), Supertrend(in.High, in.Low, in.Close, SupertrendParams{}, PathOptimized).Primary()},
		{"qqe", QQEWarmup(QQEParams{}), QQE(in.Close, QQEParams{}, PathOptimized).Primary()},
		{"stc", STCWarmup(STCParams{}), STC(in.Close, STCParams{}, PathOptimized).Primary()},
		{"kama", KAMAWarmup(KAMAParams{}), KAMA(in.Close, KAMAParams{}, PathOptimized).Primary()},
		{"vidya", VIDYAWarmup(VIDYAParams{}), VIDYA(in.Close, VIDYAParams{}, PathOptimized).Primary()},
		{"alma", ALMAWarmup(ALMAParams{}), ALMA(in.Close, ALMAParams{}, PathOptimized).Primary()},
		{"hilo", HiLoWarmup(HiLoParams{}), HiLo(in, HiLoParams{}, PathOptimized).Primary()},
		{"jma", JMAWarmup(JMAParams{}), JMA(in.Close, JMAParams{}, PathOptimized).Primary()},
	}
	for _, c := range cases {
		if got := c.got.LeadingNaNs(); got != c.want {
			t.Errorf("%s: leading NaNs = %d, warmup says %d", c.name, got, c.want)
		}
	}

	// PSAR's warm-up applies to the regime legs; the combined line carries
	// the seed stop at bar zero.
	psar := PSAR(in.High, in.Low, PSARParams{}, PathOptimized)
	long := psar.Get("PSARl_0.02_0.2")
	short := psar.Get("PSARs_0.02_0.2")
	if !math.IsNaN(long.At(0)) || !math.IsNaN(short.At(0)) {
		t.Error("psar: both legs must be undefined at bar 0")
	}
	if math.IsNaN(long.At(1)) && math.IsNaN(short.At(1)) {
		t.Error("psar: one leg must be defined at bar 1")
	}
}

func TestShortInput_AllNaN(t *testing.T) {
	in := genOHLC(t, 5, 29)

	check := func(name string, res Result) {
		t.Helper()
		for _, o := range res.Outputs {
			// Direction columns hold a constant filler regime instead of
			// NaN; every value column must be fully undefined.
			constant := true
			for i := 1; i < o.S.Len(); i++ {
				if o.S.At(i) != o.S.At(0) {
					constant = false
					break
				}
			}
			if constant && o.S.Len() > 0 && !math.IsNaN(o.S.At(0)) {
				continue
			}
			if o.S.LeadingNaNs() != o.S.Len() {
				t.Errorf("%s output %s: expected all NaN on short input", name, o.Name)
			}
		}
	}

	check("rsx", RSX(in.Close, RSXParams{}, PathOptimized))
	check("fisher", Fisher(in.High, in.Low, FisherParams{Length: 9}, PathOptimized))
	check("supertrend", Supertrend(in.High, in.Low, in.Close, SupertrendParams{}, PathOptimized))
	check("qqe", QQE(in.Close, QQEParams{}, PathOptimized))
	check("stc", STC(in.Close, STCParams{}, PathOptimized))
	check("kama", KAMA(in.Close, KAMAParams{}, PathOptimized))
	check("vidya", VIDYA(in.Close, VIDYAParams{}, PathOptimized))
	check("alma", ALMA(in.Close, ALMAParams{}, PathOptimized))
	check("hilo", HiLo(in, HiLoParams{}, PathOptimized))
}

// ────────────────────────────────────────────────────────────
// Parameter policy
// ────────────────────────────────────────────────────────────

func TestParams_ClampToDefaults(t *testing.T) {
	in := genOHLC(t, 300, 30)

	// Zero and negative parameters silently fall back to defaults.
	def := RSX(in.Close, RSXParams{Length: 14}, PathOptimized).Primary()
	bad := RSX(in.Close, RSXParams{Length: -3}, PathOptimized).Primary()
	for i := 0; i < def.Len(); i++ {
		a, b := def.At(i), bad.At(i)
		if math.IsNaN(a) != math.IsNaN(b) || (!math.IsNaN(a) && a != b) {
			t.Fatalf("bar %d: clamped params diverge from defaults", i)
		}
	}

	// Swapped fast/slow MACD periods are reordered, not rejected.
	a := STC(in.Close, STCParams{Fast: 26, Slow: 12}, PathOptimized).Primary()
	b := STC(in.Close, STCParams{Fast: 12, Slow: 26}, PathOptimized).Primary()
	for i := 0; i < a.Len(); i++ {
		x, y := a.At(i), b.At(i)
		if math.IsNaN(x) != math.IsNaN(y) || (!math.IsNaN(x) && x != y) {
			t.Fatalf("bar %d: swapped MACD periods diverge", i)
		}
	}
}

func TestDeterminism(t *testing.T) {
	in := genOHLC(t, 400, 31)
	first := QQE(in.Close, QQEParams{}, PathOptimized)
	second := QQE(in.Close, QQEParams{}, PathOptimized)
	for oi := range first.Outputs {
		a := first.Outputs[oi].S.Values()
		b := second.Outputs[oi].S.Values()
		for i := range a {
			if math.IsNaN(a[i]) != math.IsNaN(b[i]) || (!math.IsNaN(a[i]) && a[i] != b[i]) {
				t.Fatalf("output %s bar %d: repeated evaluation differs", first.Outputs[oi].Name, i)
			}
		}
	}
}

// ────────────────────────────────────────────────────────────
// Result naming
// ────────────────────────────────────────────────────────────

func TestResultNames(t *testing.T) {
	in := genOHLC(t, 300, 32)

	if got := Supertrend(in.High, in.Low, in.Close, SupertrendParams{}, PathOptimized).Name; got != "SUPERT_7_3.0" {
		t.Errorf("supertrend name = %q", got)
	}
	if got := QQE(in.Close, QQEParams{}, PathOptimized).Name; got != "QQE_14_5_4.236" {
		t.Errorf("qqe name = %q", got)
	}
	if got := PSAR(in.High, in.Low, PSARParams{}, PathOptimized).Name; got != "PSAR_0.02_0.2" {
		t.Errorf("psar name = %q", got)
	}
	if got := ALMA(in.Close, ALMAParams{}, PathOptimized).Name; got != "ALMA_10_6.0_0.85" {
		t.Errorf("alma name = %q", got)
	}
}
