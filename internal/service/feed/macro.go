package feed

import (
	"context"
	"fmt"
	"strings"

	"FinGauge/pkg/timeseries"
)

// FredSeries fetches one FRED series via the public downloaddata CSV.
// FRED marks missing observations with "."; those rows are skipped.
func (c *Client) FredSeries(ctx context.Context, id string) (timeseries.Series, error) {
	u := fmt.Sprintf("%s/series/%s/downloaddata/%s.csv", strings.TrimRight(c.cfg.Feeds.FredBaseURL, "/"), id, id)
	b, err := c.fetch(ctx, "fred", u, nil)
	if err != nil {
		return timeseries.Series{}, err
	}

	rows, err := parseRows(b)
	if err != nil {
		return timeseries.Series{}, fmt.Errorf("fred %s: %w", id, err)
	}
	if len(rows) < 2 {
		return timeseries.Series{}, fmt.Errorf("fred %s: empty csv", id)
	}

	header := normalizeHeader(rows[0])
	dateIdx := columnIndex(header, "date")
	valueIdx := columnIndex(header, strings.ToLower(id), "value")
	if dateIdx < 0 || valueIdx < 0 {
		return timeseries.Series{}, fmt.Errorf("fred %s: missing date or value column", id)
	}

	s := seriesColumn(rows[1:], dateIdx, valueIdx)
	if s.Empty() {
		return timeseries.Series{}, fmt.Errorf("fred %s: no usable rows", id)
	}
	return s, nil
}

// VIX fetches the CBOE VIX history. Both the legacy "VIX Close" and
// the current "Close" column names are accepted.
func (c *Client) VIX(ctx context.Context) (timeseries.Series, error) {
	b, err := c.fetch(ctx, "cboe_vix", c.cfg.Feeds.VIXURL, nil)
	if err != nil {
		return timeseries.Series{}, err
	}

	rows, err := parseRows(b)
	if err != nil {
		return timeseries.Series{}, fmt.Errorf("vix: %w", err)
	}
	if len(rows) < 2 {
		return timeseries.Series{}, fmt.Errorf("vix: empty csv")
	}

	header := normalizeHeader(rows[0])
	dateIdx := columnIndex(header, "date")
	closeIdx := columnIndex(header, "vix_close", "close")
	if dateIdx < 0 || closeIdx < 0 {
		return timeseries.Series{}, fmt.Errorf("vix: missing date or close column")
	}

	s := seriesColumn(rows[1:], dateIdx, closeIdx)
	if s.Empty() {
		return timeseries.Series{}, fmt.Errorf("vix: no usable rows")
	}
	return s, nil
}

// PutCallRatio fetches the CBOE put/call history, preferring the total
// ratio column and falling back to equity-only.
func (c *Client) PutCallRatio(ctx context.Context) (timeseries.Series, error) {
	b, err := c.fetch(ctx, "cboe_putcall", c.cfg.Feeds.PutCallURL, nil)
	if err != nil {
		return timeseries.Series{}, err
	}

	rows, err := parseRows(b)
	if err != nil {
		return timeseries.Series{}, fmt.Errorf("putcall: %w", err)
	}
	if len(rows) < 2 {
		return timeseries.Series{}, fmt.Errorf("putcall: empty csv")
	}

	header := normalizeHeader(rows[0])
	dateIdx := columnIndex(header, "date")
	ratioIdx := columnContaining(header, "total")
	if ratioIdx < 0 {
		ratioIdx = columnContaining(header, "equity")
	}
	if dateIdx < 0 || ratioIdx < 0 {
		return timeseries.Series{}, fmt.Errorf("putcall: missing date or ratio column")
	}

	s := seriesColumn(rows[1:], dateIdx, ratioIdx)
	if s.Empty() {
		return timeseries.Series{}, fmt.Errorf("putcall: no usable rows")
	}
	return s, nil
}
