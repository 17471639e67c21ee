package repository

import (
	"context"

	"FinGauge/internal/domain/models"
	"FinGauge/pkg/timeseries"
)

// PriceSource serves daily OHLC history for one instrument, trying the
// preferred feed first and falling back when it returns nothing.
type PriceSource interface {
	History(ctx context.Context, stooqSymbol, yahooSymbol string) (models.PriceHistory, error)
}

// MacroSource serves the daily macro series behind the sentiment proxy
// and the bond panels.
type MacroSource interface {
	FredSeries(ctx context.Context, id string) (timeseries.Series, error)
	VIX(ctx context.Context) (timeseries.Series, error)
	PutCallRatio(ctx context.Context) (timeseries.Series, error)
}

// FundamentalsSource serves the slower-moving valuation datasets.
type FundamentalsSource interface {
	Valuations(ctx context.Context) (models.ValuationDataset, error)
	MarginDebt(ctx context.Context) (debt timeseries.Series, source string, err error)
	Holdings(ctx context.Context) (models.HoldingsSnapshot, error)
	CapGDP(ctx context.Context) ([]models.CapGDP, error)
}

// CryptoSource serves live spot quotes.
type CryptoSource interface {
	Markets(ctx context.Context, ids []string) ([]models.CryptoQuote, error)
}

// MarketData bundles every feed the dashboard reads.
type MarketData interface {
	PriceSource
	MacroSource
	FundamentalsSource
	CryptoSource
}

// Metrics records operational counters for the dashboard pipeline.
type Metrics interface {
	RecordFetch(feed, outcome string, seconds float64)
	RecordIndicator(name, color string)
	RecordRefresh(outcome string, seconds float64)
	RecordError(kind string)
	RecordClients(n int)
}
