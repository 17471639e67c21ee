package indicators

import (
	"math"

	"FinGauge/internal/domain/models"
	"FinGauge/pkg/timeseries"
)

// ttmWindow is the number of monthly earnings points summed into a
// trailing twelve month figure.
const ttmWindow = 12

// TrailingPE divides daily closes by trailing twelve month earnings.
// Monthly earnings are summed over a twelve month window and forward
// filled onto the price dates.
func (e *Engine) TrailingPE(price models.PriceHistory, ds models.ValuationDataset) models.IndicatorResult {
	source := "Price: " + orDefault(price.Source, sourcePrices) + "; Earnings: " + orDefault(ds.Source, sourceValuation)

	closes := price.Closes().Compact()
	earnings := ds.Earnings.Compact()
	if closes.Empty() || earnings.Empty() {
		return models.GreyIndicator(models.IndicatorTrailingPE, source)
	}

	ttm := timeseries.RollingSum(earnings, ttmWindow)
	daily := timeseries.ForwardFillTo(ttm, closes.Times())
	return e.finish(models.IndicatorTrailingPE, ratio(closes, daily), source)
}

// CAPE passes the precomputed cyclically adjusted multiple through to
// classification.
func (e *Engine) CAPE(ds models.ValuationDataset) models.IndicatorResult {
	return e.finish(models.IndicatorCAPE, ds.CAPE.Compact(), orDefault(ds.Source, sourceValuation))
}

// MarginDebtYoY computes the year over year change of the monthly
// margin debt balance.
func (e *Engine) MarginDebtYoY(debt timeseries.Series, source string) models.IndicatorResult {
	yoy := timeseries.PctChange(debt.Compact(), 12)
	return e.finish(models.IndicatorMarginYoY, yoy, orDefault(source, sourceMargin))
}

// BuffettRatio divides total market cap by nominal GDP for each
// reported pair. The dataset is optional and an empty one is a normal
// state, not an error.
func (e *Engine) BuffettRatio(rows []models.CapGDP) models.IndicatorResult {
	pts := make([]timeseries.Point, 0, len(rows))
	for _, r := range rows {
		v := math.NaN()
		if !math.IsNaN(r.MarketCap) && !math.IsNaN(r.GDP) && r.GDP != 0 {
			v = r.MarketCap / r.GDP
		}
		pts = append(pts, timeseries.Point{Time: r.Date, Value: v})
	}
	return e.finish(models.IndicatorBuffett, timeseries.New(pts), sourceCapGDP)
}

// ratio divides two series point by point. The denominator must share
// the numerator's index. Output is absent where either operand is
// absent or the denominator is zero.
func ratio(num, den timeseries.Series) timeseries.Series {
	pts := make([]timeseries.Point, num.Len())
	for i, p := range num.Points() {
		pts[i] = timeseries.Point{Time: p.Time, Value: math.NaN()}
		d := den.At(i).Value
		if math.IsNaN(p.Value) || math.IsNaN(d) || d == 0 {
			continue
		}
		pts[i].Value = p.Value / d
	}
	return timeseries.New(pts)
}
