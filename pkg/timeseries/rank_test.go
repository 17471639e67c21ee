package timeseries

import (
	"math"
	"testing"
)

func TestPercentileRankTiesAveraged(t *testing.T) {
	r := PercentileRank(daily(1, 2, 2, 3))
	want := []float64{0.25, 0.625, 0.625, 1.0}
	for i, w := range want {
		if got := r.At(i).Value; math.Abs(got-w) > 1e-12 {
			t.Fatalf("rank[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestPercentileRankSkipsAbsent(t *testing.T) {
	r := PercentileRank(daily(5, math.NaN(), 10))
	if !math.IsNaN(r.At(1).Value) {
		t.Fatalf("absent input should stay absent, got %v", r.At(1).Value)
	}
	if r.At(0).Value != 0.5 || r.At(2).Value != 1.0 {
		t.Fatalf("ranks should only count present values: %v", r.Values())
	}
}

func TestPercentileRankAllAbsent(t *testing.T) {
	r := PercentileRank(daily(math.NaN(), math.NaN()))
	for i := 0; i < r.Len(); i++ {
		if !math.IsNaN(r.At(i).Value) {
			t.Fatalf("expected absent at %d", i)
		}
	}
}
