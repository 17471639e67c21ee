package timeseries

import (
	"math"
	"sort"
	"time"
)

// ForwardFillTo projects s onto target timestamps: each target takes
// the most recent present value at or before it. Targets before the
// first present observation stay absent. Targets must be ascending.
func ForwardFillTo(s Series, targets []time.Time) Series {
	out := make([]Point, len(targets))
	src := s.Compact().Points()

	j := 0
	carry := math.NaN()
	for i, t := range targets {
		for j < len(src) && !src[j].Time.After(t) {
			carry = src[j].Value
			j++
		}
		out[i] = Point{Time: t, Value: carry}
	}
	return Series{points: out}
}

// UnionTimes merges the timestamps of several series into one sorted
// unique index.
func UnionTimes(ss ...Series) []time.Time {
	var all []time.Time
	for _, s := range ss {
		all = append(all, s.Times()...)
	}
	if len(all) == 0 {
		return nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })

	out := all[:1]
	for _, t := range all[1:] {
		if !t.Equal(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}
