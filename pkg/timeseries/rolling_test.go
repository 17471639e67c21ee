package timeseries

import (
	"math"
	"testing"
)

func TestRollingSum(t *testing.T) {
	r := RollingSum(daily(1, 2, 3, 4), 3)
	if !math.IsNaN(r.At(0).Value) || !math.IsNaN(r.At(1).Value) {
		t.Fatalf("first n-1 outputs should be absent: %v", r.Values())
	}
	if r.At(2).Value != 6 || r.At(3).Value != 9 {
		t.Fatalf("unexpected sums %v", r.Values())
	}
}

func TestRollingSumAbsentInWindow(t *testing.T) {
	r := RollingSum(daily(1, math.NaN(), 3, 4, 5), 3)
	if !math.IsNaN(r.At(2).Value) || !math.IsNaN(r.At(3).Value) {
		t.Fatalf("windows containing an absent value should be absent: %v", r.Values())
	}
	if r.At(4).Value != 12 {
		t.Fatalf("clean window should be defined, got %v", r.At(4).Value)
	}
}

func TestRollingMean(t *testing.T) {
	r := RollingMean(daily(2, 4, 6, 8), 2)
	if r.At(1).Value != 3 || r.At(3).Value != 7 {
		t.Fatalf("unexpected means %v", r.Values())
	}
}

func TestRollingWindowLargerThanSeries(t *testing.T) {
	r := RollingMean(daily(1, 2), 5)
	for i := 0; i < r.Len(); i++ {
		if !math.IsNaN(r.At(i).Value) {
			t.Fatalf("expected all absent, got %v at %d", r.At(i).Value, i)
		}
	}
}

func TestDrawdown(t *testing.T) {
	d := Drawdown(daily(100, 120, 90, 120, 132))
	want := []float64{0, 0, -0.25, 0, 0}
	for i, w := range want {
		if got := d.At(i).Value; math.Abs(got-w) > 1e-12 {
			t.Fatalf("drawdown[%d] = %v, want %v", i, got, w)
		}
	}
	for i := 0; i < d.Len(); i++ {
		if d.At(i).Value > 0 {
			t.Fatalf("drawdown must never be positive, got %v", d.At(i).Value)
		}
	}
}

func TestPctChange(t *testing.T) {
	p := PctChange(daily(100, 110, 121), 1)
	if !math.IsNaN(p.At(0).Value) {
		t.Fatalf("first n outputs should be absent")
	}
	if math.Abs(p.At(1).Value-0.1) > 1e-12 || math.Abs(p.At(2).Value-0.1) > 1e-12 {
		t.Fatalf("unexpected changes %v", p.Values())
	}
}

func TestPctChangeTwelvePeriods(t *testing.T) {
	vals := make([]float64, 24)
	for i := range vals {
		vals[i] = 100 * math.Pow(1.01, float64(i))
	}
	p := PctChange(daily(vals...), 12)
	for i := 0; i < 12; i++ {
		if !math.IsNaN(p.At(i).Value) {
			t.Fatalf("index %d should be absent", i)
		}
	}
	want := math.Pow(1.01, 12) - 1
	if got := p.At(12).Value; math.Abs(got-want) > 1e-12 {
		t.Fatalf("pct change = %v, want %v", got, want)
	}
}
