package feed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"FinGauge/internal/domain/models"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/util"
)

// History fetches the daily history for one instrument, preferring the
// stooq feed and falling back to the yahoo download endpoint when
// stooq fails or serves nothing.
func (c *Client) History(ctx context.Context, stooqSymbol, yahooSymbol string) (models.PriceHistory, error) {
	var firstErr error
	if stooqSymbol != "" {
		h, err := c.stooqHistory(ctx, stooqSymbol)
		if err == nil {
			return h, nil
		}
		firstErr = err
		c.l.Warn("stooq feed failed, trying yahoo",
			applogger.String("symbol", stooqSymbol),
			applogger.Error(err),
		)
	}
	if yahooSymbol != "" {
		h, err := c.yahooHistory(ctx, yahooSymbol)
		if err == nil {
			return h, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		return models.PriceHistory{}, fmt.Errorf("no price feed symbol configured")
	}
	return models.PriceHistory{}, fmt.Errorf("all price feeds failed for %s/%s: %w", stooqSymbol, yahooSymbol, firstErr)
}

func (c *Client) stooqHistory(ctx context.Context, symbol string) (models.PriceHistory, error) {
	u := strings.TrimRight(c.cfg.Feeds.StooqBaseURL, "/") + "/q/d/l/"
	b, err := c.fetch(ctx, "stooq", u, map[string][]string{
		"s": {symbol},
		"i": {"d"},
	})
	if err != nil {
		return models.PriceHistory{}, err
	}
	bars, err := parseDailyBars(b)
	if err != nil {
		return models.PriceHistory{}, fmt.Errorf("stooq %s: %w", symbol, err)
	}
	return models.PriceHistory{Symbol: symbol, Source: "stooq", Bars: bars}, nil
}

func (c *Client) yahooHistory(ctx context.Context, symbol string) (models.PriceHistory, error) {
	u := strings.TrimRight(c.cfg.Feeds.YahooBaseURL, "/") + "/v7/finance/download/" + url.PathEscape(symbol)
	b, err := c.fetch(ctx, "yahoo", u, map[string][]string{
		"period1":              {"0"},
		"period2":              {strconv.FormatInt(time.Now().Unix(), 10)},
		"interval":             {"1d"},
		"events":               {"history"},
		"includeAdjustedClose": {"true"},
	})
	if err != nil {
		return models.PriceHistory{}, err
	}
	bars, err := parseDailyBars(b)
	if err != nil {
		return models.PriceHistory{}, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	return models.PriceHistory{Symbol: symbol, Source: "yahoo", Bars: bars}, nil
}

// parseDailyBars parses a Date,Open,High,Low,Close,Volume CSV. Rows
// without a parseable date and close are skipped; the other fields are
// zero when missing.
func parseDailyBars(b []byte) ([]models.Bar, error) {
	rows, err := parseRows(b)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("empty csv")
	}

	header := normalizeHeader(rows[0])
	dateIdx := columnIndex(header, "date")
	closeIdx := columnIndex(header, "close")
	if dateIdx < 0 || closeIdx < 0 {
		return nil, fmt.Errorf("missing date or close column")
	}
	openIdx := columnIndex(header, "open")
	highIdx := columnIndex(header, "high")
	lowIdx := columnIndex(header, "low")
	volIdx := columnIndex(header, "volume")

	var bars []models.Bar
	for _, row := range rows[1:] {
		if dateIdx >= len(row) || closeIdx >= len(row) {
			continue
		}
		date, ok := util.ParseDate(row[dateIdx])
		if !ok {
			continue
		}
		cl, ok := parseNumber(row[closeIdx])
		if !ok {
			continue
		}
		bar := models.Bar{Date: date, Close: cl}
		bar.Open = cellNumber(row, openIdx)
		bar.High = cellNumber(row, highIdx)
		bar.Low = cellNumber(row, lowIdx)
		bar.Volume = cellNumber(row, volIdx)
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable rows")
	}
	return bars, nil
}

func cellNumber(row []string, idx int) float64 {
	if idx < 0 || idx >= len(row) {
		return 0
	}
	v, ok := parseNumber(row[idx])
	if !ok {
		return 0
	}
	return v
}
