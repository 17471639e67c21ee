package timeseries

import (
	"encoding/json"
	"math"
	"time"
)

type jsonPoint struct {
	T time.Time `json:"t"`
	V float64   `json:"v"`
}

// MarshalJSON encodes the series as an array of {t, v} objects. Absent
// points are dropped: JSON has no NaN.
func (s Series) MarshalJSON() ([]byte, error) {
	out := make([]jsonPoint, 0, len(s.points))
	for _, p := range s.points {
		if math.IsNaN(p.Value) {
			continue
		}
		out = append(out, jsonPoint{T: p.Time, V: p.Value})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the array form produced by MarshalJSON.
func (s *Series) UnmarshalJSON(b []byte) error {
	var raw []jsonPoint
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	pts := make([]Point, len(raw))
	for i, p := range raw {
		pts[i] = Point{Time: p.T, Value: p.V}
	}
	*s = New(pts)
	return nil
}
