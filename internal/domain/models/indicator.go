package models

import (
	"time"

	"FinGauge/pkg/timeseries"
)

// Canonical indicator names, shared by computers, policies, metrics and
// the HTTP API.
const (
	IndicatorTrailingPE    = "pe_ttm"
	IndicatorCAPE          = "cape"
	IndicatorBuffett       = "buffett"
	IndicatorMarginYoY     = "margin_yoy"
	IndicatorConcentration = "concentration_top10"
	IndicatorSentiment     = "sentiment"
)

// AllIndicators lists every dashboard tile in display order.
var AllIndicators = []string{
	IndicatorTrailingPE,
	IndicatorCAPE,
	IndicatorBuffett,
	IndicatorMarginYoY,
	IndicatorConcentration,
	IndicatorSentiment,
}

// ValuationIndicators lists the tiles averaged into the valuation lens.
// Sentiment is displayed alongside but kept out of the average.
var ValuationIndicators = []string{
	IndicatorTrailingPE,
	IndicatorCAPE,
	IndicatorBuffett,
	IndicatorMarginYoY,
	IndicatorConcentration,
}

// IndicatorResult is the normalized output of one indicator computation.
// Numeric fields are nil when the underlying data was unavailable; a
// grey color always accompanies an absent value. Results are built
// fresh on every computation and never mutated.
type IndicatorResult struct {
	Name        string
	Value       *float64
	Series      *timeseries.Series
	Color       RiskColor
	LastUpdated *time.Time
	Source      string
}

// GreyIndicator returns the all-absent result used whenever a required
// input is missing.
func GreyIndicator(name, source string) IndicatorResult {
	return IndicatorResult{Name: name, Color: ColorGrey, Source: source}
}

// TrendResult is the output of the per-asset trend analysis. Empty
// series mean the underlying history was unavailable.
type TrendResult struct {
	Close       timeseries.Series
	SMA50       timeseries.Series
	SMA200      timeseries.Series
	Oscillator  timeseries.Series
	Drawdown    timeseries.Series
	Color       RiskColor
	LastUpdated *time.Time
	Source      string
}
