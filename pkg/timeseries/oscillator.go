package timeseries

import "math"

// DefaultOscillatorPeriod is the conventional 14-step lookback.
const DefaultOscillatorPeriod = 14

// Oscillator computes an RSI-style momentum oscillator in [0, 100].
// Step gains and losses are smoothed with a recursive exponential mean
// using alpha = 1/period, and the output is 100 − 100/(1+gain/loss).
// The first `period` outputs are absent while the averages warm up;
// when the smoothed loss is zero the oscillator saturates at 100.
func Oscillator(s Series, period int) Series {
	if period <= 0 {
		period = DefaultOscillatorPeriod
	}
	out := make([]Point, s.Len())
	for i, p := range s.Points() {
		out[i] = Point{Time: p.Time, Value: math.NaN()}
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	seeded := false
	deltas := 0
	prev := math.NaN()

	for i, p := range s.Points() {
		v := p.Value
		if math.IsNaN(v) {
			continue
		}
		if !math.IsNaN(prev) {
			gain, loss := 0.0, 0.0
			if d := v - prev; d > 0 {
				gain = d
			} else {
				loss = -d
			}
			if !seeded {
				avgGain, avgLoss = gain, loss
				seeded = true
			} else {
				avgGain += alpha * (gain - avgGain)
				avgLoss += alpha * (loss - avgLoss)
			}
			deltas++
		}
		prev = v

		if deltas < period {
			continue
		}
		if avgLoss == 0 {
			out[i].Value = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i].Value = 100 - 100/(1+rs)
	}
	return Series{points: out}
}
