package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FinGauge/internal/domain/models"
	"FinGauge/internal/domain/repository"
	"FinGauge/internal/domain/service"
	"FinGauge/internal/services/scoring"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/timeseries"
)

// Feed symbols behind the headline tiles. The trend lens follows the
// S&P 500; the credit leg of the sentiment proxy is the HY OAS series.
const (
	trendStooqSymbol = "^spx"
	trendYahooSymbol = "^GSPC"
	hyOASSeries      = "BAMLH0A0HYM2"
)

// ErrUnknownIndicator is returned when a tile name is not part of the
// dashboard.
var ErrUnknownIndicator = errors.New("unknown indicator")

// healthNames maps indicator names to their data-health row labels.
var healthNames = map[string]string{
	models.IndicatorTrailingPE:    "TTM P/E",
	models.IndicatorCAPE:          "CAPE",
	models.IndicatorBuffett:       "Buffett",
	models.IndicatorMarginYoY:     "Margin debt YoY",
	models.IndicatorConcentration: "SPY Top-10",
	models.IndicatorSentiment:     "Sentiment proxy",
}

// OverviewUsecase computes the dashboard overview: every tile, the
// two lenses, the guidance label and the per-source health rows.
type OverviewUsecase struct {
	data    repository.MarketData
	store   repository.SnapshotStore
	engine  service.IndicatorEngine
	metrics repository.Metrics
	l       *applogger.Logger
	timeout time.Duration
}

func NewOverviewUsecase(
	data repository.MarketData,
	store repository.SnapshotStore,
	engine service.IndicatorEngine,
	metrics repository.Metrics,
	l *applogger.Logger,
) *OverviewUsecase {
	return &OverviewUsecase{
		data:    data,
		store:   store,
		engine:  engine,
		metrics: metrics,
		l:       l,
		timeout: 60 * time.Second,
	}
}

// Overview serves the latest snapshot, computing one only when asked
// to refresh or when no snapshot exists yet.
func (uc *OverviewUsecase) Overview(ctx context.Context, refresh bool) (*models.Overview, error) {
	if !refresh {
		o, err := uc.store.LoadOverview(ctx)
		if err != nil {
			uc.l.Warn("overview snapshot load failed", applogger.Error(err))
		} else if o != nil {
			return o, nil
		}
	}
	return uc.Refresh(ctx)
}

// Indicator returns one tile with its series cut to the window.
func (uc *OverviewUsecase) Indicator(ctx context.Context, name string, window repository.Window) (models.IndicatorResult, error) {
	o, err := uc.Overview(ctx, false)
	if err != nil {
		return models.IndicatorResult{}, err
	}
	tile, ok := o.Tile(name)
	if !ok {
		return models.IndicatorResult{}, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}
	if tile.Series != nil {
		if d := window.Duration(); d > 0 {
			cut := tile.Series.TailWindow(d)
			tile.Series = &cut
		}
	}
	return tile, nil
}

// Signals returns the two lenses and the guidance label.
func (uc *OverviewUsecase) Signals(ctx context.Context) (models.SignalSummary, error) {
	o, err := uc.Overview(ctx, false)
	if err != nil {
		return models.SignalSummary{}, err
	}
	return o.Signals, nil
}

// Refresh recomputes the overview from the feeds and stores the
// resulting snapshot. Missing feeds grey their tiles instead of
// failing the pass.
func (uc *OverviewUsecase) Refresh(ctx context.Context) (*models.Overview, error) {
	start := time.Now()
	o := uc.compute(ctx)

	outcome := "ok"
	if len(o.Errors) > 0 {
		outcome = "partial"
	}
	uc.metrics.RecordRefresh(outcome, time.Since(start).Seconds())

	if err := uc.store.SaveOverview(ctx, o); err != nil {
		uc.l.Warn("overview snapshot save failed", applogger.Error(err))
	}

	uc.l.Info("overview refreshed",
		applogger.String("outcome", outcome),
		applogger.String("valuation", string(o.Signals.Valuation)),
		applogger.String("trend", string(o.Signals.Trend)),
		applogger.String("guidance", o.Signals.Guidance),
		applogger.Duration("took", time.Since(start)),
	)
	return o, nil
}

// ovInputs is everything one overview pass reads from the feeds.
type ovInputs struct {
	price     models.PriceHistory
	valuation models.ValuationDataset
	margin    timeseries.Series
	marginSrc string
	holdings  models.HoldingsSnapshot
	capGDP    []models.CapGDP
	vix       timeseries.Series
	putCall   timeseries.Series
	hyOAS     timeseries.Series
	errs      map[string]string // feed name -> error
}

func (uc *OverviewUsecase) fetchInputs(ctx context.Context) *ovInputs {
	in := &ovInputs{errs: map[string]string{}}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 8)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.data.History(ctx, trendStooqSymbol, trendYahooSymbol)
		ch <- item{"price", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.data.Valuations(ctx)
		ch <- item{"valuations", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		debt, source, err := uc.data.MarginDebt(ctx)
		ch <- item{"margin", marginInput{debt, source}, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.data.Holdings(ctx)
		ch <- item{"holdings", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.data.CapGDP(ctx)
		ch <- item{"capgdp", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.data.VIX(ctx)
		ch <- item{"vix", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.data.PutCallRatio(ctx)
		ch <- item{"putcall", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.data.FredSeries(ctx, hyOASSeries)
		ch <- item{"hy_oas", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			in.errs[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "price":
			in.price = it.val.(models.PriceHistory)
		case "valuations":
			in.valuation = it.val.(models.ValuationDataset)
		case "margin":
			m := it.val.(marginInput)
			in.margin = m.debt
			in.marginSrc = m.source
		case "holdings":
			in.holdings = it.val.(models.HoldingsSnapshot)
		case "capgdp":
			in.capGDP = it.val.([]models.CapGDP)
		case "vix":
			in.vix = it.val.(timeseries.Series)
		case "putcall":
			in.putCall = it.val.(timeseries.Series)
		case "hy_oas":
			in.hyOAS = it.val.(timeseries.Series)
		}
	}
	return in
}

type marginInput struct {
	debt   timeseries.Series
	source string
}

// tileErrors maps each failed feed onto the tiles it feeds.
var tileErrors = map[string][]string{
	"price":      {models.IndicatorTrailingPE, "trend"},
	"valuations": {models.IndicatorTrailingPE, models.IndicatorCAPE},
	"margin":     {models.IndicatorMarginYoY},
	"holdings":   {models.IndicatorConcentration},
	"capgdp":     {models.IndicatorBuffett},
	"vix":        {models.IndicatorSentiment},
	"putcall":    {models.IndicatorSentiment},
	"hy_oas":     {models.IndicatorSentiment},
}

func (uc *OverviewUsecase) compute(ctx context.Context) *models.Overview {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	in := uc.fetchInputs(ctx)

	tiles := []models.IndicatorResult{
		uc.engine.TrailingPE(in.price, in.valuation),
		uc.engine.CAPE(in.valuation),
		uc.engine.BuffettRatio(in.capGDP),
		uc.engine.MarginDebtYoY(in.margin, in.marginSrc),
		uc.engine.ConcentrationTop10(in.holdings),
		uc.engine.Sentiment(in.vix, in.putCall, in.hyOAS),
	}
	trend := uc.engine.AssetTrend(in.price)

	for _, t := range tiles {
		uc.metrics.RecordIndicator(t.Name, string(t.Color))
	}

	var valColors []models.RiskColor
	for _, name := range models.ValuationIndicators {
		for _, t := range tiles {
			if t.Name == name {
				valColors = append(valColors, t.Color)
				break
			}
		}
	}
	valuation := scoring.Score(valColors)

	o := &models.Overview{
		GeneratedAt: time.Now().UTC(),
		Tiles:       tiles,
		Signals: models.SignalSummary{
			Valuation: valuation,
			Trend:     trend.Color,
			Guidance:  scoring.Guidance(valuation, trend.Color),
		},
		Health: healthRows(tiles),
	}

	if len(in.errs) > 0 {
		o.Errors = map[string]string{}
		for feed, msg := range in.errs {
			uc.metrics.RecordError("feed_" + feed)
			for _, tile := range tileErrors[feed] {
				if prev, ok := o.Errors[tile]; ok {
					o.Errors[tile] = prev + "; " + msg
				} else {
					o.Errors[tile] = msg
				}
			}
		}
	}
	return o
}

func healthRows(tiles []models.IndicatorResult) []models.SourceHealth {
	rows := make([]models.SourceHealth, 0, len(tiles))
	for _, t := range tiles {
		name := healthNames[t.Name]
		if name == "" {
			name = t.Name
		}
		rows = append(rows, models.SourceHealth{
			Name:        name,
			LastUpdated: t.LastUpdated,
			Source:      t.Source,
			Value:       t.Value,
		})
	}
	return rows
}
