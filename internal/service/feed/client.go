// Package feed fetches the upstream market data feeds: daily prices,
// macro series, valuation datasets, index holdings and crypto quotes.
// Every fetcher degrades to an error instead of panicking; callers
// decide whether a missing feed greys a tile or fails a request.
package feed

import (
	"context"
	"fmt"
	"time"

	"FinGauge/internal/domain/repository"
	"FinGauge/pkg/config"
	xhttp "FinGauge/pkg/http"
	applogger "FinGauge/pkg/logger"
)

// Client fetches upstream feeds over HTTP. It implements
// repository.MarketData.
type Client struct {
	http    *xhttp.Client
	cfg     *config.Config
	l       *applogger.Logger
	metrics repository.Metrics
}

// New creates a feed client from config.
func New(cfg *config.Config, l *applogger.Logger) *Client {
	opts := []xhttp.ClientOption{
		xhttp.WithUserAgent(cfg.Feeds.UserAgent),
	}
	if d := cfg.Feeds.Timeout.Std(); d > 0 {
		opts = append(opts, xhttp.WithTimeout(d))
	}
	return &Client{
		http: xhttp.NewClient(opts...),
		cfg:  cfg,
		l:    l,
	}
}

// SetMetrics injects the metrics recorder.
func (c *Client) SetMetrics(m repository.Metrics) { c.metrics = m }

func (c *Client) observe(feed string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordFetch(feed, outcome, time.Since(start).Seconds())
}

// fetch GETs one feed URL and returns the raw body.
func (c *Client) fetch(ctx context.Context, feed, rawURL string, params map[string][]string) ([]byte, error) {
	start := time.Now()
	var body []byte
	err := c.http.Get(ctx, &xhttp.RequestOptions{
		URL:         rawURL,
		QueryParams: params,
	}, &body)
	c.observe(feed, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s fetch: %w", feed, err)
	}
	return body, nil
}
