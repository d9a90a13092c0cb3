package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestMeanAndStdDev(t *testing.T) {
	xs := []float64{90, 110, 90, 110}
	if m := Mean(xs); m != 100 {
		t.Fatalf("mean: got %v, want 100", m)
	}
	if sd := StdDev(xs); sd != 10 {
		t.Fatalf("stddev: got %v, want 10", sd)
	}
}

func TestMeanEmpty(t *testing.T) {
	if m := Mean(nil); m != 0 {
		t.Fatalf("mean of empty: got %v, want 0", m)
	}
	if sd := StdDev(nil); sd != 0 {
		t.Fatalf("stddev of empty: got %v, want 0", sd)
	}
}

func TestQuintiles(t *testing.T) {
	xs := make([]float64, 10)
	for i := range xs {
		xs[i] = float64(i + 1) // 1..10
	}
	cuts := Quintiles(xs)
	want := [4]float64{3, 5, 7, 9}
	if cuts != want {
		t.Fatalf("quintiles: got %v, want %v", cuts, want)
	}
}

func TestOLSSlope(t *testing.T) {
	ys := []float64{10, 12, 14, 16, 18}
	if s := OLSSlope(ys); !almostEqual(s, 2, 1e-9) {
		t.Fatalf("slope: got %v, want 2", s)
	}
	if s := OLSSlope([]float64{5}); s != 0 {
		t.Fatalf("slope of single point: got %v, want 0", s)
	}
}

func TestAutocorrelationPeriodic(t *testing.T) {
	// period-4 sawtooth repeats exactly, so lag 4 correlates strongly
	xs := make([]float64, 40)
	for i := range xs {
		xs[i] = float64(i % 4)
	}
	if c := Autocorrelation(xs, 4); c < 0.8 {
		t.Fatalf("autocorrelation at true period: got %v, want > 0.8", c)
	}
	if c := Autocorrelation(xs, 0); c != 0 {
		t.Fatalf("autocorrelation at lag 0: got %v, want 0", c)
	}
}

func TestZValue(t *testing.T) {
	cases := []struct {
		conf float64
		want float64
	}{
		{0.99, 2.576},
		{0.95, 1.96},
		{0.90, 1.645},
		{0.80, 1.282},
		{0, 1.96},
	}
	for _, c := range cases {
		if z := ZValue(c.conf); z != c.want {
			t.Fatalf("z(%v): got %v, want %v", c.conf, z, c.want)
		}
	}
}

func TestRounding(t *testing.T) {
	if r := Round2(3.14159); r != 3.14 {
		t.Fatalf("round2: got %v", r)
	}
	if r := Round1(49.96); r != 50.0 {
		t.Fatalf("round1: got %v", r)
	}
}

func TestClampAndSigmoid(t *testing.T) {
	if c := Clamp(1.5, 0.01, 0.99); c != 0.99 {
		t.Fatalf("clamp high: got %v", c)
	}
	if c := Clamp(-1, 0.01, 0.99); c != 0.01 {
		t.Fatalf("clamp low: got %v", c)
	}
	if s := Sigmoid(0); s != 0.5 {
		t.Fatalf("sigmoid(0): got %v, want 0.5", s)
	}
}
