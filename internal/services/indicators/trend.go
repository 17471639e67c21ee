package indicators

import (
	"math"

	"FinGauge/internal/domain/models"
	"FinGauge/pkg/timeseries"
)

// Moving average windows for the asset trend panel.
const (
	shortTrendWindow = 50
	longTrendWindow  = 200
)

// AssetTrend derives the moving average, oscillator and drawdown panel
// for one instrument and colors the trend: green when the close and
// the short average both sit above the long average, red when the
// close is more than 2% below the long average, yellow in between or
// while the long average is still warming up. No price history at all
// also reads yellow.
func (e *Engine) AssetTrend(price models.PriceHistory) models.TrendResult {
	source := orDefault(price.Source, sourcePrices)

	closes := price.Closes().Compact()
	if closes.Empty() {
		return models.TrendResult{Color: models.ColorYellow, Source: source}
	}

	sma50 := timeseries.RollingMean(closes, shortTrendWindow)
	sma200 := timeseries.RollingMean(closes, longTrendWindow)
	osc := timeseries.Oscillator(closes, timeseries.DefaultOscillatorPeriod)
	dd := timeseries.Drawdown(closes)

	last := closes.At(closes.Len() - 1)
	lastSMA50 := sma50.At(sma50.Len() - 1).Value
	lastSMA200 := sma200.At(sma200.Len() - 1).Value

	dist := last.Value/lastSMA200 - 1
	cross := lastSMA50 > lastSMA200

	var color models.RiskColor
	switch {
	case math.IsNaN(dist):
		color = models.ColorYellow
	case dist > 0 && cross:
		color = models.ColorGreen
	case dist > -0.02:
		color = models.ColorYellow
	default:
		color = models.ColorRed
	}

	t := last.Time
	return models.TrendResult{
		Close:       closes,
		SMA50:       sma50,
		SMA200:      sma200,
		Oscillator:  osc,
		Drawdown:    dd,
		Color:       color,
		LastUpdated: &t,
		Source:      source,
	}
}
