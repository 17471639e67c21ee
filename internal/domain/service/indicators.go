package service

import (
	"FinGauge/internal/domain/models"
	"FinGauge/pkg/timeseries"
)

// IndicatorEngine computes dashboard tiles from raw feed data. Implementations
// are pure and degrade missing inputs to grey results instead of erroring.
type IndicatorEngine interface {
	TrailingPE(price models.PriceHistory, ds models.ValuationDataset) models.IndicatorResult
	CAPE(ds models.ValuationDataset) models.IndicatorResult
	MarginDebtYoY(debt timeseries.Series, source string) models.IndicatorResult
	BuffettRatio(rows []models.CapGDP) models.IndicatorResult
	ConcentrationTop10(snap models.HoldingsSnapshot) models.IndicatorResult
	Sentiment(vix, putCall, hyOAS timeseries.Series) models.IndicatorResult
	AssetTrend(price models.PriceHistory) models.TrendResult
}
