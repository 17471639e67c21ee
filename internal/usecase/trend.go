package usecase

import (
	"context"
	"errors"
	"fmt"

	"FinGauge/internal/domain/models"
	"FinGauge/internal/domain/repository"
	"FinGauge/internal/domain/service"
	applogger "FinGauge/pkg/logger"
)

// ErrUnknownAsset is returned when a class/name pair is not in the
// instrument registry.
var ErrUnknownAsset = errors.New("unknown asset")

// TrendUsecase serves per-asset trend analyses and the asset browser.
// Full-history results are cached per instrument; windows are applied
// when serving so every window shares one computation.
type TrendUsecase struct {
	data   repository.MarketData
	store  repository.SnapshotStore
	engine service.IndicatorEngine
	l      *applogger.Logger
	assets []models.Asset
}

func NewTrendUsecase(
	data repository.MarketData,
	store repository.SnapshotStore,
	engine service.IndicatorEngine,
	l *applogger.Logger,
) *TrendUsecase {
	return &TrendUsecase{
		data:   data,
		store:  store,
		engine: engine,
		l:      l,
		assets: models.DefaultAssets(),
	}
}

// Assets returns the browsable instrument registry.
func (uc *TrendUsecase) Assets() []models.Asset { return uc.assets }

// Classes returns the asset classes in registry order.
func (uc *TrendUsecase) Classes() []models.AssetClass {
	return models.AssetClasses(uc.assets)
}

// Trend computes the moving-average analysis for one instrument. The
// moving averages are always computed over the full history so short
// windows do not distort them; the window only trims the output.
func (uc *TrendUsecase) Trend(ctx context.Context, stooqSymbol, yahooSymbol string, window repository.Window) (*models.TrendResult, error) {
	key := stooqSymbol + "|" + yahooSymbol

	if t, err := uc.store.LoadTrend(ctx, key); err != nil {
		uc.l.Warn("trend snapshot load failed",
			applogger.String("key", key), applogger.Error(err))
	} else if t != nil {
		return cutTrend(t, window), nil
	}

	hist, err := uc.data.History(ctx, stooqSymbol, yahooSymbol)
	if err != nil {
		return nil, err
	}
	full := uc.engine.AssetTrend(hist)

	if err := uc.store.SaveTrend(ctx, key, &full); err != nil {
		uc.l.Warn("trend snapshot save failed",
			applogger.String("key", key), applogger.Error(err))
	}
	return cutTrend(&full, window), nil
}

// Browse serves one instrument of the asset browser. Price instruments
// get a trend analysis, FRED-backed rows the raw series, crypto rows a
// spot quote.
func (uc *TrendUsecase) Browse(ctx context.Context, class models.AssetClass, name string, window repository.Window) (models.AssetView, error) {
	a, ok := models.FindAsset(uc.assets, class, name)
	if !ok {
		return models.AssetView{}, fmt.Errorf("%w: %s/%s", ErrUnknownAsset, class, name)
	}

	switch {
	case a.Fred != "":
		s, err := uc.data.FredSeries(ctx, a.Fred)
		if err != nil {
			return models.AssetView{}, err
		}
		if d := window.Duration(); d > 0 {
			s = s.TailWindow(d)
		}
		return models.AssetView{Asset: a, Kind: "series", Series: &s}, nil

	case a.Coingecko != "":
		quotes, err := uc.data.Markets(ctx, []string{a.Coingecko})
		if err != nil {
			return models.AssetView{}, err
		}
		if len(quotes) == 0 {
			return models.AssetView{}, fmt.Errorf("no quote for %s", a.Coingecko)
		}
		return models.AssetView{Asset: a, Kind: "quote", Quote: &quotes[0]}, nil

	default:
		t, err := uc.Trend(ctx, a.Stooq, a.Yahoo, window)
		if err != nil {
			return models.AssetView{}, err
		}
		return models.AssetView{Asset: a, Kind: "trend", Trend: t}, nil
	}
}

// cutTrend trims every series of a trend result to the window. The
// color and metadata describe the full history and are kept as is.
func cutTrend(t *models.TrendResult, window repository.Window) *models.TrendResult {
	d := window.Duration()
	if d <= 0 {
		return t
	}
	out := *t
	out.Close = t.Close.TailWindow(d)
	out.SMA50 = t.SMA50.TailWindow(d)
	out.SMA200 = t.SMA200.TailWindow(d)
	out.Oscillator = t.Oscillator.TailWindow(d)
	out.Drawdown = t.Drawdown.TailWindow(d)
	return &out
}
