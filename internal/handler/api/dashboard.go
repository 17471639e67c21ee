package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"FinGauge/internal/domain/models"
	domrepo "FinGauge/internal/domain/repository"
	wshub "FinGauge/internal/handler/ws"
	"FinGauge/internal/service/metrics"
	"FinGauge/internal/service/ratelimit"
	"FinGauge/internal/usecase"
	pkgcache "FinGauge/pkg/cache"
	xhttp "FinGauge/pkg/http"
	applogger "FinGauge/pkg/logger"
)

// Default symbols for /api/trend when the request names none.
const (
	defaultTrendStooq = "^spx"
	defaultTrendYahoo = "^GSPC"
)

// AssetCatalog is the /api/assets payload.
type AssetCatalog struct {
	Classes []models.AssetClass
	Assets  []models.Asset
}

// HealthStatus is the /api/health payload.
type HealthStatus struct {
	Status      string
	GeneratedAt *time.Time
	Sources     []models.SourceHealth
	Errors      map[string]string
}

// DashboardHandler serves the dashboard REST API and the websocket
// upgrade endpoint.
type DashboardHandler struct {
	logger   *applogger.Logger
	overview *usecase.OverviewUsecase
	trend    *usecase.TrendUsecase
	store    domrepo.SnapshotStore
	hub      *wshub.Hub
	cache    pkgcache.Service
	rl       *ratelimit.Limiter
	respTTL  time.Duration
}

func NewDashboardHandler(
	logger *applogger.Logger,
	overview *usecase.OverviewUsecase,
	trend *usecase.TrendUsecase,
	store domrepo.SnapshotStore,
	hub *wshub.Hub,
) *DashboardHandler {
	metrics.Register()
	return &DashboardHandler{
		logger:   logger,
		overview: overview,
		trend:    trend,
		store:    store,
		hub:      hub,
		rl:       ratelimit.New(),
		respTTL:  30 * time.Second,
	}
}

// SetCache enables the marshaled-response cache. Response keys carry
// the resp: prefix, so the handler can share a cache with the feed
// layer and the snapshot store.
func (h *DashboardHandler) SetCache(c pkgcache.Service) { h.cache = c }

// SetResponseTTL overrides how long cached responses are served.
func (h *DashboardHandler) SetResponseTTL(d time.Duration) {
	if d > 0 {
		h.respTTL = d
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/overview", h.Overview)
	g.GET("/indicators", h.Indicators)
	g.GET("/indicators/:name", h.Indicator)
	g.GET("/signals", h.Signals)
	g.GET("/trend", h.Trend)
	g.GET("/assets", h.Assets)
	g.GET("/assets/browse", h.Browse)
	g.GET("/health", h.Health)
	e.GET("/ws", h.WS)
}

func (h *DashboardHandler) Overview(c echo.Context) error {
	endpoint := "overview"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.OverviewRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	// Forced recomputes hit every upstream feed, so they are paced
	// much harder than snapshot reads.
	if req.Refresh {
		if !h.rl.Allow(c.RealIP()+":refresh", 2, 0.1) {
			h.logger.Warn("overview refresh rate_limited", applogger.String("remote", c.RealIP()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("refresh budget exhausted, retry later"))
		}
	} else {
		key := "resp:overview"
		if served, err := h.serveCached(c, endpoint, key); served {
			return err
		}
		res, err := h.overview.Overview(c.Request().Context(), false)
		if err != nil {
			metrics.APIErrors.WithLabelValues(endpoint).Inc()
			h.logger.Error("overview usecase error", applogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
		return h.respond(c, key, res)
	}

	res, err := h.overview.Overview(c.Request().Context(), true)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("overview refresh error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardHandler) Indicators(c echo.Context) error {
	endpoint := "indicators"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	key := "resp:indicators"
	if served, err := h.serveCached(c, endpoint, key); served {
		return err
	}
	o, err := h.overview.Overview(c.Request().Context(), false)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("indicators usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, key, o.Tiles)
}

func (h *DashboardHandler) Indicator(c echo.Context) error {
	endpoint := "indicator"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.IndicatorRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	window := domrepo.NormalizeWindow(req.Window)

	key := "resp:indicator:" + req.Name + ":" + string(window)
	if served, err := h.serveCached(c, endpoint, key); served {
		return err
	}
	res, err := h.overview.Indicator(c.Request().Context(), req.Name, window)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownIndicator) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("indicator %s", req.Name))
		}
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("indicator usecase error", applogger.String("name", req.Name), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, key, res)
}

func (h *DashboardHandler) Signals(c echo.Context) error {
	endpoint := "signals"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	key := "resp:signals"
	if served, err := h.serveCached(c, endpoint, key); served {
		return err
	}
	res, err := h.overview.Signals(c.Request().Context())
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("signals usecase error", applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, key, res)
}

func (h *DashboardHandler) Trend(c echo.Context) error {
	endpoint := "trend"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Symbol == "" {
		req.Symbol = defaultTrendStooq
		if req.Fallback == "" {
			req.Fallback = defaultTrendYahoo
		}
	}
	window := domrepo.NormalizeWindow(req.Window)

	if !h.rl.Allow(c.RealIP()+":trend", 5, 2) {
		h.logger.Warn("trend rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("trend request budget exhausted"))
	}

	key := "resp:trend:" + req.Symbol + ":" + req.Fallback + ":" + string(window)
	if served, err := h.serveCached(c, endpoint, key); served {
		return err
	}
	res, err := h.trend.Trend(c.Request().Context(), req.Symbol, req.Fallback, window)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("trend usecase error", applogger.String("symbol", req.Symbol), applogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, key, res)
}

func (h *DashboardHandler) Assets(c echo.Context) error {
	endpoint := "assets"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	return xhttp.SuccessResponse(c, AssetCatalog{
		Classes: h.trend.Classes(),
		Assets:  h.trend.Assets(),
	})
}

func (h *DashboardHandler) Browse(c echo.Context) error {
	endpoint := "browse"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.BrowseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	window := domrepo.NormalizeWindow(req.Window)

	if !h.rl.Allow(c.RealIP()+":browse", 5, 2) {
		h.logger.Warn("browse rate_limited", applogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("browse request budget exhausted"))
	}

	key := "resp:browse:" + req.Class + ":" + req.Name + ":" + string(window)
	if served, err := h.serveCached(c, endpoint, key); served {
		return err
	}
	res, err := h.trend.Browse(c.Request().Context(), models.AssetClass(req.Class), req.Name, window)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownAsset) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("asset %s/%s", req.Class, req.Name))
		}
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("browse usecase error",
			applogger.String("class", req.Class),
			applogger.String("name", req.Name),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, key, res)
}

func (h *DashboardHandler) Health(c echo.Context) error {
	endpoint := "health"
	start := time.Now()
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	res := HealthStatus{Status: "ok"}
	if err := h.store.Health(c.Request().Context()); err != nil {
		h.logger.Warn("snapshot store unhealthy", applogger.Error(err))
		res.Status = "degraded"
	}

	o, err := h.store.LoadOverview(c.Request().Context())
	switch {
	case err != nil:
		h.logger.Warn("health snapshot load failed", applogger.Error(err))
		res.Status = "degraded"
	case o == nil:
		res.Status = "empty"
	default:
		at := o.GeneratedAt
		res.GeneratedAt = &at
		res.Sources = o.Health
		res.Errors = o.Errors
		if len(o.Errors) > 0 && res.Status == "ok" {
			res.Status = "degraded"
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// WS hands the connection to the hub; after the upgrade the response
// belongs to the websocket.
func (h *DashboardHandler) WS(c echo.Context) error {
	if err := h.hub.Serve(c.Response(), c.Request()); err != nil {
		h.logger.Warn("ws upgrade failed", applogger.Error(err))
		return err
	}
	return nil
}

// serveCached writes a previously marshaled response when one exists.
// The bool reports whether the request was served.
func (h *DashboardHandler) serveCached(c echo.Context, endpoint, key string) (bool, error) {
	if h.cache == nil {
		return false, nil
	}
	raw, err := h.cache.Get(c.Request().Context(), key)
	if err != nil {
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			h.logger.Warn("response cache get failed",
				applogger.String("endpoint", endpoint), applogger.Error(err))
		}
		return false, nil
	}
	metrics.APICacheHits.WithLabelValues(endpoint).Inc()
	h.logger.Debug("response cache hit", applogger.String("key", key))
	return true, c.JSONBlob(http.StatusOK, []byte(raw))
}

// respond marshals the standard envelope once, caches the bytes and
// serves them, so cache hits and misses return identical payloads.
func (h *DashboardHandler) respond(c echo.Context, key string, payload interface{}) error {
	if h.cache == nil {
		return xhttp.SuccessResponse(c, payload)
	}
	b, err := json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    payload,
	})
	if err != nil {
		h.logger.Error("response marshal failed", applogger.Error(err))
		return xhttp.SuccessResponse(c, payload)
	}
	if err := h.cache.Set(c.Request().Context(), key, string(b), h.respTTL); err != nil {
		h.logger.Warn("response cache set failed",
			applogger.String("key", key), applogger.Error(err))
	}
	return c.JSONBlob(http.StatusOK, b)
}
