package timeseries

import (
	"math"
	"sort"
)

// PercentileRank maps every present value to its fractional rank in
// (0, 1] among the present values of the same series, ties averaged.
// Absent points stay absent.
func PercentileRank(s Series) Series {
	type obs struct {
		idx int
		v   float64
	}
	present := make([]obs, 0, s.Len())
	for i, p := range s.Points() {
		if !math.IsNaN(p.Value) {
			present = append(present, obs{idx: i, v: p.Value})
		}
	}

	out := make([]Point, s.Len())
	for i, p := range s.Points() {
		out[i] = Point{Time: p.Time, Value: math.NaN()}
	}
	if len(present) == 0 {
		return Series{points: out}
	}

	sort.SliceStable(present, func(i, j int) bool { return present[i].v < present[j].v })

	n := float64(len(present))
	for i := 0; i < len(present); {
		j := i
		for j < len(present) && present[j].v == present[i].v {
			j++
		}
		// average 1-based rank across the tie group
		avg := (float64(i+1) + float64(j)) / 2
		for k := i; k < j; k++ {
			out[present[k].idx].Value = avg / n
		}
		i = j
	}
	return Series{points: out}
}
