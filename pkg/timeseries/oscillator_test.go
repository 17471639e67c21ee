package timeseries

import (
	"math"
	"testing"
)

func TestOscillatorRisingSeries(t *testing.T) {
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	o := Oscillator(daily(vals...), 14)

	last, ok := o.Last()
	if !ok {
		t.Fatalf("expected an oscillator value")
	}
	if last.Value <= 50 {
		t.Fatalf("rising series should finish above 50, got %v", last.Value)
	}
	// no losses at all: saturated
	if last.Value != 100 {
		t.Fatalf("loss-free series should saturate at 100, got %v", last.Value)
	}
}

func TestOscillatorWarmup(t *testing.T) {
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = float64(30 + i%3)
	}
	o := Oscillator(daily(vals...), 14)
	for i := 0; i < 14; i++ {
		if !math.IsNaN(o.At(i).Value) {
			t.Fatalf("index %d should still be warming up, got %v", i, o.At(i).Value)
		}
	}
	if math.IsNaN(o.At(14).Value) {
		t.Fatalf("index 14 should be defined")
	}
}

func TestOscillatorFallingSeries(t *testing.T) {
	vals := make([]float64, 60)
	for i := range vals {
		vals[i] = float64(200 - i)
	}
	o := Oscillator(daily(vals...), 14)
	last, ok := o.Last()
	if !ok {
		t.Fatalf("expected an oscillator value")
	}
	if last.Value >= 50 {
		t.Fatalf("falling series should finish below 50, got %v", last.Value)
	}
}

func TestOscillatorBounded(t *testing.T) {
	vals := []float64{10, 12, 9, 14, 8, 15, 11, 13, 7, 16, 12, 10, 14, 9, 13, 11, 15, 8, 12, 10}
	o := Oscillator(daily(vals...), 5)
	for i := 0; i < o.Len(); i++ {
		v := o.At(i).Value
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("oscillator out of range at %d: %v", i, v)
		}
	}
}
