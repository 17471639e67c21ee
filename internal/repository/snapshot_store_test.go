package repository

import (
	"context"
	"testing"
	"time"

	"FinGauge/internal/domain/models"
	pkgcache "FinGauge/pkg/cache"
	"FinGauge/pkg/timeseries"
)

func newStore(t *testing.T) *CacheSnapshotStore {
	t.Helper()
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })
	return NewCacheSnapshotStore(mem)
}

func TestLoadOverviewMissIsNil(t *testing.T) {
	s := newStore(t)
	o, err := s.LoadOverview(context.Background())
	if err != nil {
		t.Fatalf("LoadOverview: %v", err)
	}
	if o != nil {
		t.Fatalf("expected nil on miss, got %+v", o)
	}
}

func TestOverviewRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	v := 23.5
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := timeseries.New([]timeseries.Point{
		{Time: at.AddDate(0, -1, 0), Value: 22.0},
		{Time: at, Value: v},
	})
	in := &models.Overview{
		GeneratedAt: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Tiles: []models.IndicatorResult{
			{
				Name:        models.IndicatorCAPE,
				Value:       &v,
				Series:      &series,
				Color:       models.ColorYellow,
				LastUpdated: &at,
				Source:      "Yale/Shiller",
			},
		},
		Signals: models.SignalSummary{
			Valuation: models.ColorYellow,
			Trend:     models.ColorGreen,
			Guidance:  "Stay invested, keep buying",
		},
		Errors: map[string]string{"sentiment": "vix feed down"},
	}

	if err := s.SaveOverview(ctx, in); err != nil {
		t.Fatalf("SaveOverview: %v", err)
	}
	out, err := s.LoadOverview(ctx)
	if err != nil {
		t.Fatalf("LoadOverview: %v", err)
	}
	if out == nil {
		t.Fatal("snapshot missing after save")
	}
	if !out.GeneratedAt.Equal(in.GeneratedAt) {
		t.Errorf("GeneratedAt = %v, want %v", out.GeneratedAt, in.GeneratedAt)
	}
	tile, ok := out.Tile(models.IndicatorCAPE)
	if !ok {
		t.Fatal("tile missing after round trip")
	}
	if tile.Value == nil || *tile.Value != v {
		t.Errorf("tile value = %v", tile.Value)
	}
	if tile.Series == nil || tile.Series.Len() != 2 {
		t.Errorf("tile series = %v", tile.Series)
	}
	if out.Signals != in.Signals {
		t.Errorf("signals = %+v", out.Signals)
	}
	if out.Errors["sentiment"] != "vix feed down" {
		t.Errorf("errors = %v", out.Errors)
	}
}

func TestTrendRoundTripKeyedByInstrument(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	mk := func(v float64) *models.TrendResult {
		base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		return &models.TrendResult{
			Close:  timeseries.New([]timeseries.Point{{Time: base, Value: v}}),
			Color:  models.ColorGreen,
			Source: "stooq",
		}
	}
	if err := s.SaveTrend(ctx, "^spx|^GSPC", mk(100)); err != nil {
		t.Fatalf("SaveTrend: %v", err)
	}
	if err := s.SaveTrend(ctx, "^ndx|^NDX", mk(200)); err != nil {
		t.Fatalf("SaveTrend: %v", err)
	}

	got, err := s.LoadTrend(ctx, "^spx|^GSPC")
	if err != nil {
		t.Fatalf("LoadTrend: %v", err)
	}
	if got == nil {
		t.Fatal("trend missing after save")
	}
	last, ok := got.Close.Last()
	if !ok || last.Value != 100 {
		t.Errorf("wrong trend came back: %+v", got)
	}

	if miss, err := s.LoadTrend(ctx, "^dax|^GDAXI"); err != nil || miss != nil {
		t.Errorf("expected miss, got %+v err %v", miss, err)
	}
}

func TestCorruptSnapshotIsAMiss(t *testing.T) {
	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })
	s := NewCacheSnapshotStore(mem)
	ctx := context.Background()

	if err := mem.Set(ctx, overviewKey, "{not json", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	o, err := s.LoadOverview(ctx)
	if err != nil {
		t.Fatalf("LoadOverview: %v", err)
	}
	if o != nil {
		t.Fatalf("corrupt entry should read as miss, got %+v", o)
	}
}
