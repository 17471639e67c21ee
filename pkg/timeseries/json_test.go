package timeseries

import (
	"encoding/json"
	"math"
	"testing"
)

func TestJSONRoundTripDropsAbsent(t *testing.T) {
	s := daily(1.5, math.NaN(), 2.5)
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Series
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("expected 2 points after round trip, got %d", back.Len())
	}
	if back.At(0).Value != 1.5 || back.At(1).Value != 2.5 {
		t.Fatalf("unexpected values %v", back.Values())
	}
	if !back.At(1).Time.Equal(day(2)) {
		t.Fatalf("timestamps should survive, got %v", back.At(1).Time)
	}
}
