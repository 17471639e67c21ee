package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"FinGauge/internal/domain/models"
	wshub "FinGauge/internal/handler/ws"
	"FinGauge/internal/repository"
	"FinGauge/internal/services/indicators"
	"FinGauge/internal/usecase"
	pkgcache "FinGauge/pkg/cache"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/timeseries"
)

// staticData returns empty feed results: every tile degrades to grey,
// which is all the HTTP layer needs.
type staticData struct{}

func (staticData) History(ctx context.Context, stooqSymbol, yahooSymbol string) (models.PriceHistory, error) {
	return models.PriceHistory{}, nil
}
func (staticData) FredSeries(ctx context.Context, id string) (timeseries.Series, error) {
	return timeseries.Series{}, nil
}
func (staticData) VIX(ctx context.Context) (timeseries.Series, error) {
	return timeseries.Series{}, nil
}
func (staticData) PutCallRatio(ctx context.Context) (timeseries.Series, error) {
	return timeseries.Series{}, nil
}
func (staticData) Valuations(ctx context.Context) (models.ValuationDataset, error) {
	return models.ValuationDataset{}, nil
}
func (staticData) MarginDebt(ctx context.Context) (timeseries.Series, string, error) {
	return timeseries.Series{}, "", nil
}
func (staticData) Holdings(ctx context.Context) (models.HoldingsSnapshot, error) {
	return models.HoldingsSnapshot{}, nil
}
func (staticData) CapGDP(ctx context.Context) ([]models.CapGDP, error) { return nil, nil }
func (staticData) Markets(ctx context.Context, ids []string) ([]models.CryptoQuote, error) {
	return []models.CryptoQuote{{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", Price: 64000}}, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(feed, outcome string, seconds float64) {}
func (nopMetrics) RecordIndicator(name, color string)                {}
func (nopMetrics) RecordRefresh(outcome string, seconds float64)     {}
func (nopMetrics) RecordError(kind string)                           {}
func (nopMetrics) RecordClients(n int)                               {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type fixture struct {
	e   *echo.Echo
	h   *DashboardHandler
	hub *wshub.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	l := testLogger(t)

	mem := pkgcache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })
	store := repository.NewCacheSnapshotStore(mem)

	engine := indicators.NewEngine(nil)
	overview := usecase.NewOverviewUsecase(staticData{}, store, engine, nopMetrics{}, l)
	trend := usecase.NewTrendUsecase(staticData{}, store, engine, l)

	hub := wshub.NewHub(nopMetrics{}, l)
	hub.Start(context.Background())
	t.Cleanup(hub.Stop)

	h := NewDashboardHandler(l, overview, trend, store, hub)
	e := echo.New()
	h.RegisterRoutes(e)
	return &fixture{e: e, h: h, hub: hub}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func get(t *testing.T, e *echo.Echo, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v (body %q)", target, err, rec.Body.String())
	}
	return rec, env
}

func TestOverviewEndpoint(t *testing.T) {
	f := newFixture(t)

	rec, env := get(t, f.e, "/api/overview")
	if rec.Code != http.StatusOK || env.Status != http.StatusOK {
		t.Fatalf("status = %d/%d", rec.Code, env.Status)
	}
	var o models.Overview
	if err := json.Unmarshal(env.Data, &o); err != nil {
		t.Fatalf("decode overview: %v", err)
	}
	if len(o.Tiles) != len(models.AllIndicators) {
		t.Errorf("tiles = %d", len(o.Tiles))
	}
	if o.Signals.Guidance == "" {
		t.Error("guidance missing")
	}
}

func TestIndicatorEndpointValidatesName(t *testing.T) {
	f := newFixture(t)

	rec, env := get(t, f.e, "/api/indicators/not_a_tile")
	if rec.Code != http.StatusOK {
		t.Fatalf("http status = %d", rec.Code)
	}
	if env.Status != http.StatusBadRequest {
		t.Errorf("envelope status = %d, want 400", env.Status)
	}
}

func TestIndicatorEndpointServesTile(t *testing.T) {
	f := newFixture(t)

	_, env := get(t, f.e, "/api/indicators/pe_ttm?window=1y")
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", env.Status)
	}
	var tile models.IndicatorResult
	if err := json.Unmarshal(env.Data, &tile); err != nil {
		t.Fatalf("decode tile: %v", err)
	}
	if tile.Name != models.IndicatorTrailingPE {
		t.Errorf("tile = %+v", tile)
	}
}

func TestSignalsEndpoint(t *testing.T) {
	f := newFixture(t)

	_, env := get(t, f.e, "/api/signals")
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", env.Status)
	}
	var s models.SignalSummary
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatalf("decode signals: %v", err)
	}
	if s.Guidance == "" {
		t.Error("guidance missing")
	}
}

func TestAssetsEndpointListsRegistry(t *testing.T) {
	f := newFixture(t)

	_, env := get(t, f.e, "/api/assets")
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", env.Status)
	}
	var cat AssetCatalog
	if err := json.Unmarshal(env.Data, &cat); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(cat.Classes) == 0 || len(cat.Assets) == 0 {
		t.Errorf("catalog = %+v", cat)
	}
}

func TestBrowseUnknownAssetIs404(t *testing.T) {
	f := newFixture(t)

	_, env := get(t, f.e, "/api/assets/browse?class=US&name=No+Such+Index")
	if env.Status != http.StatusNotFound {
		t.Errorf("envelope status = %d, want 404", env.Status)
	}
}

func TestBrowseFredAssetReturnsSeries(t *testing.T) {
	f := newFixture(t)

	_, env := get(t, f.e, "/api/assets/browse?class=Bonds&name=HY+OAS")
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", env.Status)
	}
	var v models.AssetView
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if v.Kind != "series" {
		t.Errorf("kind = %q", v.Kind)
	}
}

func TestHealthEndpointEmptyStore(t *testing.T) {
	f := newFixture(t)

	_, env := get(t, f.e, "/api/health")
	if env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", env.Status)
	}
	var hs HealthStatus
	if err := json.Unmarshal(env.Data, &hs); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if hs.Status != "empty" {
		t.Errorf("health status = %q, want empty", hs.Status)
	}
}

func TestResponseCachePopulated(t *testing.T) {
	f := newFixture(t)
	cache := pkgcache.NewMemoryCache()
	t.Cleanup(func() { cache.Close() })
	f.h.SetCache(cache)

	if _, env := get(t, f.e, "/api/overview"); env.Status != http.StatusOK {
		t.Fatalf("envelope status = %d", env.Status)
	}
	if _, err := cache.Get(context.Background(), "resp:overview"); err != nil {
		t.Errorf("response was not cached: %v", err)
	}

	// The cached bytes serve the second request verbatim.
	rec1, _ := get(t, f.e, "/api/overview")
	rec2, _ := get(t, f.e, "/api/overview")
	if rec1.Body.String() != rec2.Body.String() {
		t.Error("cached response differs from original")
	}
}

func TestWSUpgrade(t *testing.T) {
	f := newFixture(t)

	srv := httptest.NewServer(f.e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for f.hub.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want 1", f.hub.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
