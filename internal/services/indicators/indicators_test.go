package indicators

import (
	"time"

	"FinGauge/internal/domain/models"
	"FinGauge/pkg/timeseries"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return testEpoch.AddDate(0, 0, n) }

func month(n int) time.Time { return testEpoch.AddDate(0, n, 0) }

func daily(vals ...float64) timeseries.Series {
	pts := make([]timeseries.Point, len(vals))
	for i, v := range vals {
		pts[i] = timeseries.Point{Time: day(i), Value: v}
	}
	return timeseries.New(pts)
}

func monthly(vals ...float64) timeseries.Series {
	pts := make([]timeseries.Point, len(vals))
	for i, v := range vals {
		pts[i] = timeseries.Point{Time: month(i), Value: v}
	}
	return timeseries.New(pts)
}

func history(startDay int, closes ...float64) models.PriceHistory {
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{Date: day(startDay + i), Close: c}
	}
	return models.PriceHistory{Symbol: "^spx", Source: "stooq", Bars: bars}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
