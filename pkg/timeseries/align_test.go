package timeseries

import (
	"math"
	"testing"
	"time"
)

func TestForwardFillTo(t *testing.T) {
	monthly := New([]Point{
		{Time: day(10), Value: 5},
		{Time: day(40), Value: 7},
	})
	targets := []time.Time{day(0), day(10), day(25), day(40), day(60)}

	f := ForwardFillTo(monthly, targets)
	if !math.IsNaN(f.At(0).Value) {
		t.Fatalf("target before first observation should be absent")
	}
	want := []float64{math.NaN(), 5, 5, 7, 7}
	for i := 1; i < len(want); i++ {
		if f.At(i).Value != want[i] {
			t.Fatalf("fill[%d] = %v, want %v", i, f.At(i).Value, want[i])
		}
	}
}

func TestForwardFillSkipsAbsentSource(t *testing.T) {
	src := New([]Point{
		{Time: day(0), Value: 3},
		{Time: day(5), Value: math.NaN()},
	})
	f := ForwardFillTo(src, []time.Time{day(6)})
	if f.At(0).Value != 3 {
		t.Fatalf("fill should carry the last present value, got %v", f.At(0).Value)
	}
}

func TestUnionTimes(t *testing.T) {
	a := New([]Point{{Time: day(0), Value: 1}, {Time: day(2), Value: 2}})
	b := New([]Point{{Time: day(1), Value: 1}, {Time: day(2), Value: 2}})

	u := UnionTimes(a, b)
	if len(u) != 3 {
		t.Fatalf("expected 3 timestamps, got %d", len(u))
	}
	for i := 1; i < len(u); i++ {
		if !u[i].After(u[i-1]) {
			t.Fatalf("union not strictly ascending: %v", u)
		}
	}
}

func TestUnionTimesEmpty(t *testing.T) {
	if u := UnionTimes(Series{}, Series{}); u != nil {
		t.Fatalf("expected nil union, got %v", u)
	}
}
