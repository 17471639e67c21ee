package feed

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"FinGauge/internal/domain/models"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/timeseries"
	"FinGauge/pkg/util"
)

// Local dataset filenames looked up under the configured data dir.
// Operators drop these in to pin slow-moving or paywalled datasets.
const (
	localValuationFile = "shiller.csv"
	localMarginFile    = "margin_debt.csv"
	localCapGDPFile    = "wilshire_5000_proxy.csv"
)

// Valuations loads the monthly valuation dataset: as-reported earnings
// plus the cyclically adjusted multiple. A local file under the data
// dir wins over the remote feed.
func (c *Client) Valuations(ctx context.Context) (models.ValuationDataset, error) {
	b, err := c.localOrFetch(ctx, "valuation", localValuationFile, c.cfg.Feeds.ValuationURL)
	if err != nil {
		return models.ValuationDataset{}, err
	}

	rows, err := parseRows(b)
	if err != nil {
		return models.ValuationDataset{}, fmt.Errorf("valuation: %w", err)
	}
	if len(rows) < 2 {
		return models.ValuationDataset{}, fmt.Errorf("valuation: empty csv")
	}

	header := normalizeHeader(rows[0])
	dateIdx := columnIndex(header, "date")
	if dateIdx < 0 {
		return models.ValuationDataset{}, fmt.Errorf("valuation: missing date column")
	}
	earnIdx := columnIndex(header, "earnings", "e")
	capeIdx := columnContaining(header, "cape")
	if capeIdx < 0 {
		capeIdx = columnIndex(header, "pe10")
	}

	ds := models.ValuationDataset{Source: "Yale/Shiller"}
	if earnIdx >= 0 {
		ds.Earnings = seriesColumn(rows[1:], dateIdx, earnIdx)
	}
	if capeIdx >= 0 {
		ds.CAPE = seriesColumn(rows[1:], dateIdx, capeIdx)
	}
	if ds.Earnings.Empty() && ds.CAPE.Empty() {
		return models.ValuationDataset{}, fmt.Errorf("valuation: no usable rows")
	}
	return ds, nil
}

// MarginDebt loads the monthly margin debt series. A local FINRA
// extract wins; otherwise the configured FRED proxy series is used.
// The second return names the source that actually served.
func (c *Client) MarginDebt(ctx context.Context) (timeseries.Series, string, error) {
	if c.cfg.Feeds.DataDir != "" {
		path := filepath.Join(c.cfg.Feeds.DataDir, localMarginFile)
		if b, err := os.ReadFile(path); err == nil {
			s, perr := parseMarginCSV(b)
			if perr == nil {
				return s, "FINRA", nil
			}
			c.l.Warn("local margin dataset unusable",
				applogger.String("path", path),
				applogger.Error(perr),
			)
		}
	}

	id := c.cfg.Feeds.MarginFredSeries
	s, err := c.FredSeries(ctx, id)
	if err != nil {
		return timeseries.Series{}, "", err
	}
	return s, "FRED proxy (" + id + ")", nil
}

func parseMarginCSV(b []byte) (timeseries.Series, error) {
	rows, err := parseRows(b)
	if err != nil {
		return timeseries.Series{}, err
	}
	if len(rows) < 2 {
		return timeseries.Series{}, fmt.Errorf("empty csv")
	}

	header := normalizeHeader(rows[0])
	dateIdx := columnIndex(header, "date", "month")
	debtIdx := columnContaining(header, "debit")
	if debtIdx < 0 {
		debtIdx = columnIndex(header, "margin_debt", "value")
	}
	if dateIdx < 0 || debtIdx < 0 {
		return timeseries.Series{}, fmt.Errorf("missing date or debit column")
	}

	s := seriesColumn(rows[1:], dateIdx, debtIdx)
	if s.Empty() {
		return timeseries.Series{}, fmt.Errorf("no usable rows")
	}
	return s, nil
}

// Holdings fetches the index holdings table. The vendor file carries a
// preamble before the header row; the as-of date is read from it when
// present.
func (c *Client) Holdings(ctx context.Context) (models.HoldingsSnapshot, error) {
	b, err := c.fetch(ctx, "holdings", c.cfg.Feeds.HoldingsURL, nil)
	if err != nil {
		return models.HoldingsSnapshot{}, err
	}
	snap, err := parseHoldingsCSV(b)
	if err != nil {
		return models.HoldingsSnapshot{}, fmt.Errorf("holdings: %w", err)
	}
	snap.Source = "State Street (SPY holdings)"
	return snap, nil
}

func parseHoldingsCSV(b []byte) (models.HoldingsSnapshot, error) {
	rows, err := parseRows(b)
	if err != nil {
		return models.HoldingsSnapshot{}, err
	}

	var snap models.HoldingsSnapshot
	headerRow := -1
	var tickerIdx, nameIdx, weightIdx int
	for i, row := range rows {
		header := normalizeHeader(row)
		ti := columnIndex(header, "ticker", "identifier")
		wi := columnContaining(header, "weight")
		if ti >= 0 && wi >= 0 {
			headerRow = i
			tickerIdx = ti
			weightIdx = wi
			nameIdx = columnIndex(header, "name", "security_name")
			break
		}
		// Preamble row: pick up the as-of date if it names one.
		if snap.AsOf == nil && len(row) > 0 {
			first := strings.ToLower(row[0])
			if strings.Contains(first, "date") || strings.Contains(first, "as of") {
				for _, cell := range row[1:] {
					if t, ok := util.ParseDate(cell); ok {
						asOf := t
						snap.AsOf = &asOf
						break
					}
				}
			}
		}
	}
	if headerRow < 0 {
		return models.HoldingsSnapshot{}, fmt.Errorf("no header row with ticker and weight")
	}

	for _, row := range rows[headerRow+1:] {
		if tickerIdx >= len(row) {
			continue
		}
		ticker := strings.TrimSpace(row[tickerIdx])
		if ticker == "" {
			continue
		}
		if weightIdx >= len(row) {
			continue
		}
		w, ok := parseNumber(row[weightIdx])
		if !ok {
			continue
		}
		h := models.Holding{Ticker: ticker, Weight: w}
		if nameIdx >= 0 && nameIdx < len(row) {
			h.Name = strings.TrimSpace(row[nameIdx])
		}
		snap.Rows = append(snap.Rows, h)
	}
	if len(snap.Rows) == 0 {
		return models.HoldingsSnapshot{}, fmt.Errorf("no holdings rows")
	}
	if snap.AsOf == nil {
		now := time.Now().UTC()
		snap.AsOf = &now
	}
	return snap, nil
}

// CapGDP loads the optional local market-cap/GDP dataset. A missing
// file is not an error: callers treat a nil slice as no data.
func (c *Client) CapGDP(ctx context.Context) ([]models.CapGDP, error) {
	path := filepath.Join(c.cfg.Feeds.DataDir, localCapGDPFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("capgdp: %w", err)
	}

	rows, err := parseRows(b)
	if err != nil {
		return nil, fmt.Errorf("capgdp: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := normalizeHeader(rows[0])
	dateIdx := columnIndex(header, "date")
	capIdx := columnIndex(header, "market_cap", "wilshire", "total_market_cap")
	gdpIdx := columnIndex(header, "gdp")
	if dateIdx < 0 || capIdx < 0 || gdpIdx < 0 {
		return nil, fmt.Errorf("capgdp: missing date, market_cap or gdp column")
	}

	var out []models.CapGDP
	for _, row := range rows[1:] {
		if dateIdx >= len(row) {
			continue
		}
		date, ok := util.ParseDate(row[dateIdx])
		if !ok {
			continue
		}
		r := models.CapGDP{Date: date, MarketCap: math.NaN(), GDP: math.NaN()}
		if capIdx < len(row) {
			if v, ok := parseNumber(row[capIdx]); ok {
				r.MarketCap = v
			}
		}
		if gdpIdx < len(row) {
			if v, ok := parseNumber(row[gdpIdx]); ok {
				r.GDP = v
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// localOrFetch prefers a file under the data dir when present, then
// falls back to the remote feed.
func (c *Client) localOrFetch(ctx context.Context, feed, filename, remoteURL string) ([]byte, error) {
	if c.cfg.Feeds.DataDir != "" {
		path := filepath.Join(c.cfg.Feeds.DataDir, filename)
		if b, err := os.ReadFile(path); err == nil {
			c.l.Debug("using local dataset", applogger.String("path", path))
			return b, nil
		}
	}
	return c.fetch(ctx, feed, remoteURL, nil)
}
