package feed

import (
	"context"
	"testing"
	"time"

	"FinGauge/internal/domain/models"
	pkgcache "FinGauge/pkg/cache"
	"FinGauge/pkg/config"
	"FinGauge/pkg/timeseries"
)

// countingSource is a MarketData stub that counts upstream calls.
type countingSource struct {
	calls map[string]int
}

func newCountingSource() *countingSource {
	return &countingSource{calls: map[string]int{}}
}

func (s *countingSource) History(ctx context.Context, stooqSymbol, yahooSymbol string) (models.PriceHistory, error) {
	s.calls["history"]++
	return models.PriceHistory{
		Symbol: stooqSymbol,
		Source: "stooq",
		Bars: []models.Bar{
			{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100},
		},
	}, nil
}

func (s *countingSource) FredSeries(ctx context.Context, id string) (timeseries.Series, error) {
	s.calls["fred"]++
	return timeseries.New([]timeseries.Point{
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 4.0},
	}), nil
}

func (s *countingSource) VIX(ctx context.Context) (timeseries.Series, error) {
	s.calls["vix"]++
	return timeseries.New([]timeseries.Point{
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 14.0},
	}), nil
}

func (s *countingSource) PutCallRatio(ctx context.Context) (timeseries.Series, error) {
	s.calls["putcall"]++
	return timeseries.New(nil), nil
}

func (s *countingSource) Valuations(ctx context.Context) (models.ValuationDataset, error) {
	s.calls["valuations"]++
	return models.ValuationDataset{Source: "Yale/Shiller"}, nil
}

func (s *countingSource) MarginDebt(ctx context.Context) (timeseries.Series, string, error) {
	s.calls["margin"]++
	return timeseries.New([]timeseries.Point{
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 800000},
	}), "FINRA", nil
}

func (s *countingSource) Holdings(ctx context.Context) (models.HoldingsSnapshot, error) {
	s.calls["holdings"]++
	return models.HoldingsSnapshot{
		Rows:   []models.Holding{{Ticker: "AAPL", Weight: 7.25}},
		Source: "State Street (SPY holdings)",
	}, nil
}

func (s *countingSource) CapGDP(ctx context.Context) ([]models.CapGDP, error) {
	s.calls["capgdp"]++
	return nil, nil
}

func (s *countingSource) Markets(ctx context.Context, ids []string) ([]models.CryptoQuote, error) {
	s.calls["crypto"]++
	return []models.CryptoQuote{{ID: "bitcoin", Price: 60000}}, nil
}

func newCachedFixture(t *testing.T) (*CachedSource, *countingSource) {
	t.Helper()
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })

	cfg := &config.Config{}
	cfg.TTL.StooqDaily = config.Duration(time.Minute)
	cfg.TTL.CboeDaily = config.Duration(time.Minute)
	cfg.TTL.FredQuarterly = config.Duration(time.Minute)
	cfg.TTL.FinraMonthly = config.Duration(time.Minute)
	cfg.TTL.ShillerMonthly = config.Duration(time.Minute)
	cfg.TTL.HoldingsDaily = config.Duration(time.Minute)
	cfg.TTL.CoinGeckoLive = config.Duration(time.Minute)

	upstream := newCountingSource()
	return NewCachedSource(upstream, mem, cfg, testLogger(t)), upstream
}

func TestCachedSourceServesRepeatsFromCache(t *testing.T) {
	cached, upstream := newCachedFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		h, err := cached.History(ctx, "^spx", "^GSPC")
		if err != nil {
			t.Fatalf("History #%d: %v", i, err)
		}
		if len(h.Bars) != 1 || h.Bars[0].Close != 100 {
			t.Fatalf("History #%d returned %+v", i, h)
		}
	}
	if got := upstream.calls["history"]; got != 1 {
		t.Fatalf("upstream hit %d times, want 1", got)
	}
}

func TestCachedSourceSeriesRoundTrip(t *testing.T) {
	cached, upstream := newCachedFixture(t)
	ctx := context.Background()

	first, err := cached.FredSeries(ctx, "DGS10")
	if err != nil {
		t.Fatalf("FredSeries: %v", err)
	}
	second, err := cached.FredSeries(ctx, "DGS10")
	if err != nil {
		t.Fatalf("FredSeries (cached): %v", err)
	}
	if upstream.calls["fred"] != 1 {
		t.Fatalf("upstream hit %d times, want 1", upstream.calls["fred"])
	}
	f, _ := first.Last()
	s, ok := second.Last()
	if !ok || f.Value != s.Value || !f.Time.Equal(s.Time) {
		t.Fatalf("cached series differs: %+v vs %+v", f, s)
	}
}

func TestCachedSourceMarginKeepsSource(t *testing.T) {
	cached, upstream := newCachedFixture(t)
	ctx := context.Background()

	if _, _, err := cached.MarginDebt(ctx); err != nil {
		t.Fatalf("MarginDebt: %v", err)
	}
	_, source, err := cached.MarginDebt(ctx)
	if err != nil {
		t.Fatalf("MarginDebt (cached): %v", err)
	}
	if source != "FINRA" {
		t.Fatalf("source = %q, want FINRA from cache", source)
	}
	if upstream.calls["margin"] != 1 {
		t.Fatalf("upstream hit %d times, want 1", upstream.calls["margin"])
	}
}

func TestCachedSourceCapGDPPassesThrough(t *testing.T) {
	cached, upstream := newCachedFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := cached.CapGDP(ctx); err != nil {
			t.Fatalf("CapGDP: %v", err)
		}
	}
	if upstream.calls["capgdp"] != 2 {
		t.Fatalf("expected pass-through on every call, got %d", upstream.calls["capgdp"])
	}
}
