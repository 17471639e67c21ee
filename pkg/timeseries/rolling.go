package timeseries

import "math"

// RollingSum computes the trailing sum over a window of n points.
// Outputs are absent for the first n−1 points and wherever the window
// contains an absent value.
func RollingSum(s Series, n int) Series {
	return rolling(s, n, func(sum float64, _ int) float64 { return sum })
}

// RollingMean computes the trailing mean over a window of n points,
// with the same absence rules as RollingSum.
func RollingMean(s Series, n int) Series {
	return rolling(s, n, func(sum float64, n int) float64 { return sum / float64(n) })
}

func rolling(s Series, n int, finish func(sum float64, n int) float64) Series {
	out := make([]Point, s.Len())
	for i, p := range s.Points() {
		out[i] = Point{Time: p.Time, Value: math.NaN()}
	}
	if n <= 0 || n > s.Len() {
		return Series{points: out}
	}

	sum := 0.0
	missing := 0
	for i, p := range s.Points() {
		if math.IsNaN(p.Value) {
			missing++
		} else {
			sum += p.Value
		}
		if i >= n {
			old := s.At(i - n).Value
			if math.IsNaN(old) {
				missing--
			} else {
				sum -= old
			}
		}
		if i >= n-1 && missing == 0 {
			out[i].Value = finish(sum, n)
		}
	}
	return Series{points: out}
}

// Drawdown computes v/runningMax − 1 over the series, scanning the
// running maximum left to right. Values are never positive and the
// point at a fresh peak is exactly zero.
func Drawdown(s Series) Series {
	out := make([]Point, s.Len())
	peak := math.NaN()
	for i, p := range s.Points() {
		out[i] = Point{Time: p.Time, Value: math.NaN()}
		if math.IsNaN(p.Value) {
			continue
		}
		if math.IsNaN(peak) || p.Value > peak {
			peak = p.Value
		}
		out[i].Value = p.Value/peak - 1
	}
	return Series{points: out}
}

// PctChange computes (v[t] / v[t−n]) − 1. Outputs are absent for the
// first n points, where either operand is absent, or where the base
// value is zero.
func PctChange(s Series, n int) Series {
	out := make([]Point, s.Len())
	for i, p := range s.Points() {
		out[i] = Point{Time: p.Time, Value: math.NaN()}
		if i < n {
			continue
		}
		base := s.At(i - n).Value
		if math.IsNaN(p.Value) || math.IsNaN(base) || base == 0 {
			continue
		}
		out[i].Value = p.Value/base - 1
	}
	return Series{points: out}
}
