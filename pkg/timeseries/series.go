// Package timeseries provides an ordered float64 time series and the
// transforms the indicator computers are built from. A NaN value marks
// an observation that is absent for its date.
package timeseries

import (
	"math"
	"sort"
	"time"
)

// Point is a single dated observation.
type Point struct {
	Time  time.Time
	Value float64
}

// Series holds points ordered by time ascending with unique timestamps.
// The zero value is an empty series.
type Series struct {
	points []Point
}

// New builds a Series from points. Points are sorted by time and
// duplicate timestamps collapse to the later-supplied value.
func New(points []Point) Series {
	if len(points) == 0 {
		return Series{}
	}
	ps := make([]Point, len(points))
	copy(ps, points)
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Time.Before(ps[j].Time) })

	out := ps[:1]
	for _, p := range ps[1:] {
		if p.Time.Equal(out[len(out)-1].Time) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return Series{points: out}
}

// Len returns the number of points, absent observations included.
func (s Series) Len() int { return len(s.points) }

// Empty reports whether the series has no points.
func (s Series) Empty() bool { return len(s.points) == 0 }

// At returns the i-th point.
func (s Series) At(i int) Point { return s.points[i] }

// Points returns the underlying points. Callers must not mutate them.
func (s Series) Points() []Point { return s.points }

// Times returns all timestamps in order.
func (s Series) Times() []time.Time {
	ts := make([]time.Time, len(s.points))
	for i, p := range s.points {
		ts[i] = p.Time
	}
	return ts
}

// Values returns all values in order, NaN where absent.
func (s Series) Values() []float64 {
	vs := make([]float64, len(s.points))
	for i, p := range s.points {
		vs[i] = p.Value
	}
	return vs
}

// Last returns the most recent point with a present value.
func (s Series) Last() (Point, bool) {
	for i := len(s.points) - 1; i >= 0; i-- {
		if !math.IsNaN(s.points[i].Value) {
			return s.points[i], true
		}
	}
	return Point{}, false
}

// Compact returns the series without its absent points.
func (s Series) Compact() Series {
	out := make([]Point, 0, len(s.points))
	for _, p := range s.points {
		if !math.IsNaN(p.Value) {
			out = append(out, p)
		}
	}
	return Series{points: out}
}

// Since returns the points at or after t.
func (s Series) Since(t time.Time) Series {
	i := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Time.Before(t) })
	return Series{points: s.points[i:]}
}

// TailWindow returns the points strictly after last−d, i.e. the trailing
// window of calendar length d. A series shorter than the window is
// returned whole.
func (s Series) TailWindow(d time.Duration) Series {
	if len(s.points) == 0 {
		return Series{}
	}
	cut := s.points[len(s.points)-1].Time.Add(-d)
	i := sort.Search(len(s.points), func(i int) bool { return s.points[i].Time.After(cut) })
	return Series{points: s.points[i:]}
}
