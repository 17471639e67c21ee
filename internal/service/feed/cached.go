package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinGauge/internal/domain/models"
	"FinGauge/internal/domain/repository"
	pkgcache "FinGauge/pkg/cache"
	"FinGauge/pkg/config"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/timeseries"
)

// lockTTL bounds how long a fill lock can outlive a crashed worker.
const lockTTL = 30 * time.Second

// CachedSource decorates a MarketData source with per-feed TTL caching
// and fill locking, so concurrent refreshes hit each upstream once per
// TTL window.
type CachedSource struct {
	next  repository.MarketData
	cache pkgcache.Service
	cfg   *config.Config
	l     *applogger.Logger
}

// NewCachedSource wraps next with the given cache backend.
func NewCachedSource(next repository.MarketData, svc pkgcache.Service, cfg *config.Config, l *applogger.Logger) *CachedSource {
	return &CachedSource{next: next, cache: svc, cfg: cfg, l: l}
}

// cachedFetch serves key from cache or fills it via fill. Values are
// stored as JSON strings, the one representation both cache backends
// round-trip.
func cachedFetch[T any](ctx context.Context, c *CachedSource, key string, ttl time.Duration, fill func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.cache.Get(ctx, key)
	if err == nil {
		var out T
		if jerr := json.Unmarshal([]byte(raw), &out); jerr == nil {
			return out, nil
		}
		// Corrupt entry: drop it and refill.
		_ = c.cache.Delete(ctx, key)
	} else if !errors.Is(err, pkgcache.ErrCacheMiss) {
		c.l.Warn("cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	lockKey := key + ":fill"
	locked, lerr := c.cache.TryLock(ctx, lockKey, lockTTL)
	if lerr == nil && !locked {
		// Another worker is filling; wait briefly for its result.
		for i := 0; i < 20; i++ {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(250 * time.Millisecond):
			}
			if raw, err := c.cache.Get(ctx, key); err == nil {
				var out T
				if jerr := json.Unmarshal([]byte(raw), &out); jerr == nil {
					return out, nil
				}
			}
		}
		// The filler never landed a value; fall through and fetch.
	}
	if locked {
		defer func() { _ = c.cache.Unlock(ctx, lockKey) }()
	}

	out, ferr := fill(ctx)
	if ferr != nil {
		return zero, ferr
	}
	if b, jerr := json.Marshal(out); jerr == nil {
		if serr := c.cache.Set(ctx, key, string(b), ttl); serr != nil {
			c.l.Warn("cache write failed", applogger.String("key", key), applogger.Error(serr))
		}
	}
	return out, nil
}

func (c *CachedSource) History(ctx context.Context, stooqSymbol, yahooSymbol string) (models.PriceHistory, error) {
	key := pkgcache.Key("feed:price", stooqSymbol, yahooSymbol)
	return cachedFetch(ctx, c, key, c.cfg.TTL.StooqDaily.Std(), func(ctx context.Context) (models.PriceHistory, error) {
		return c.next.History(ctx, stooqSymbol, yahooSymbol)
	})
}

func (c *CachedSource) FredSeries(ctx context.Context, id string) (timeseries.Series, error) {
	key := pkgcache.Key("feed:fred", id)
	return cachedFetch(ctx, c, key, c.cfg.TTL.FredQuarterly.Std(), func(ctx context.Context) (timeseries.Series, error) {
		return c.next.FredSeries(ctx, id)
	})
}

func (c *CachedSource) VIX(ctx context.Context) (timeseries.Series, error) {
	return cachedFetch(ctx, c, "feed:vix", c.cfg.TTL.CboeDaily.Std(), func(ctx context.Context) (timeseries.Series, error) {
		return c.next.VIX(ctx)
	})
}

func (c *CachedSource) PutCallRatio(ctx context.Context) (timeseries.Series, error) {
	return cachedFetch(ctx, c, "feed:putcall", c.cfg.TTL.CboeDaily.Std(), func(ctx context.Context) (timeseries.Series, error) {
		return c.next.PutCallRatio(ctx)
	})
}

func (c *CachedSource) Valuations(ctx context.Context) (models.ValuationDataset, error) {
	return cachedFetch(ctx, c, "feed:valuations", c.cfg.TTL.ShillerMonthly.Std(), func(ctx context.Context) (models.ValuationDataset, error) {
		return c.next.Valuations(ctx)
	})
}

// marginPayload bundles the two MarginDebt results for caching.
type marginPayload struct {
	Debt   timeseries.Series
	Source string
}

func (c *CachedSource) MarginDebt(ctx context.Context) (timeseries.Series, string, error) {
	p, err := cachedFetch(ctx, c, "feed:margin", c.cfg.TTL.FinraMonthly.Std(), func(ctx context.Context) (marginPayload, error) {
		debt, source, err := c.next.MarginDebt(ctx)
		if err != nil {
			return marginPayload{}, err
		}
		return marginPayload{Debt: debt, Source: source}, nil
	})
	if err != nil {
		return timeseries.Series{}, "", err
	}
	return p.Debt, p.Source, nil
}

func (c *CachedSource) Holdings(ctx context.Context) (models.HoldingsSnapshot, error) {
	return cachedFetch(ctx, c, "feed:holdings", c.cfg.TTL.HoldingsDaily.Std(), func(ctx context.Context) (models.HoldingsSnapshot, error) {
		return c.next.Holdings(ctx)
	})
}

// CapGDP reads a local file; caching would only add staleness.
func (c *CachedSource) CapGDP(ctx context.Context) ([]models.CapGDP, error) {
	return c.next.CapGDP(ctx)
}

func (c *CachedSource) Markets(ctx context.Context, ids []string) ([]models.CryptoQuote, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	key := pkgcache.Key("feed:crypto", strings.Join(ids, ","))
	quotes, err := cachedFetch(ctx, c, key, c.cfg.TTL.CoinGeckoLive.Std(), func(ctx context.Context) ([]models.CryptoQuote, error) {
		rows, err := c.next.Markets(ctx, ids)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			return nil, fmt.Errorf("coingecko: empty result")
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return quotes, nil
}
