package models

import (
	"time"

	"FinGauge/pkg/timeseries"
)

// SourceHealth is one data-health row: when a source last reported and
// what the tile reads now.
type SourceHealth struct {
	Name        string
	LastUpdated *time.Time
	Source      string
	Value       *float64
}

// SignalSummary combines the valuation lens, the trend lens and the
// guidance label derived from them.
type SignalSummary struct {
	Valuation RiskColor
	Trend     RiskColor
	Guidance  string
}

// Overview is the computed state of the whole dashboard: every tile,
// the combined signals and the per-source health rows. Errors carries
// per-tile fetch failures by indicator name; nil when the pass was
// clean.
type Overview struct {
	GeneratedAt time.Time
	Tiles       []IndicatorResult
	Signals     SignalSummary
	Health      []SourceHealth
	Errors      map[string]string
}

// Tile finds a tile by indicator name.
func (o *Overview) Tile(name string) (IndicatorResult, bool) {
	for _, t := range o.Tiles {
		if t.Name == name {
			return t, true
		}
	}
	return IndicatorResult{}, false
}

// AssetView is the polymorphic asset-browser payload: price
// instruments get a trend analysis, economic series a raw series,
// crypto a spot quote.
type AssetView struct {
	Asset  Asset
	Kind   string // "trend", "series" or "quote"
	Trend  *TrendResult
	Series *timeseries.Series
	Quote  *CryptoQuote
}
