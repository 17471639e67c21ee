package models

import (
	"time"

	"FinGauge/pkg/timeseries"
)

// Bar is one daily OHLCV row from a price feed.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceHistory is an ordered daily history for one instrument.
type PriceHistory struct {
	Symbol string
	Source string // feed that actually served the request
	Bars   []Bar
}

// Closes extracts the close prices as a series.
func (h PriceHistory) Closes() timeseries.Series {
	pts := make([]timeseries.Point, len(h.Bars))
	for i, b := range h.Bars {
		pts[i] = timeseries.Point{Time: b.Date, Value: b.Close}
	}
	return timeseries.New(pts)
}

// Holding is one row of an index holdings snapshot. Weight is carried
// as published; percent-vs-fraction normalization happens in the
// concentration computer.
type Holding struct {
	Ticker string
	Name   string
	Weight float64
}

// HoldingsSnapshot is a point-in-time holdings table.
type HoldingsSnapshot struct {
	Rows   []Holding
	AsOf   *time.Time
	Source string
}

// CapGDP is one row of the optional market-cap/GDP dataset.
type CapGDP struct {
	Date      time.Time
	MarketCap float64
	GDP       float64
}

// ValuationDataset is the monthly valuation feed: as-reported earnings
// plus a precomputed cyclically adjusted multiple.
type ValuationDataset struct {
	Earnings timeseries.Series
	CAPE     timeseries.Series
	Source   string
}

// CryptoQuote is a spot market row from the crypto feed.
type CryptoQuote struct {
	ID        string
	Symbol    string
	Name      string
	Price     float64
	Change24h float64 // percent
	Change7d  float64 // percent
}
