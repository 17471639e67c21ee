package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FinGauge/internal/domain/models"
	pkgcache "FinGauge/pkg/cache"
)

const (
	overviewKey    = "snapshot:overview"
	trendKeyPrefix = "snapshot:trend"

	// Snapshots outlive their refresh interval by a wide margin so a
	// restart serves the last good state instead of a cold page.
	snapshotTTL = 24 * time.Hour
)

// CacheSnapshotStore persists computed dashboard state in the cache
// layer. It follows the deployment: in-process memory by default, redis
// when configured, so snapshots survive restarts exactly when the
// operator asked for that.
type CacheSnapshotStore struct {
	cache pkgcache.Service
}

func NewCacheSnapshotStore(cache pkgcache.Service) *CacheSnapshotStore {
	return &CacheSnapshotStore{cache: cache}
}

func (s *CacheSnapshotStore) SaveOverview(ctx context.Context, o *models.Overview) error {
	return s.save(ctx, overviewKey, o)
}

func (s *CacheSnapshotStore) LoadOverview(ctx context.Context) (*models.Overview, error) {
	var o models.Overview
	ok, err := s.load(ctx, overviewKey, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func (s *CacheSnapshotStore) SaveTrend(ctx context.Context, key string, t *models.TrendResult) error {
	return s.save(ctx, pkgcache.Key(trendKeyPrefix, key), t)
}

func (s *CacheSnapshotStore) LoadTrend(ctx context.Context, key string) (*models.TrendResult, error) {
	var t models.TrendResult
	ok, err := s.load(ctx, pkgcache.Key(trendKeyPrefix, key), &t)
	if err != nil || !ok {
		return nil, err
	}
	return &t, nil
}

// Health checks that the backing cache answers.
func (s *CacheSnapshotStore) Health(ctx context.Context) error {
	_, err := s.cache.Exists(ctx, overviewKey)
	return err
}

// Close is a no-op: the cache layer is shared and closed by the app.
func (s *CacheSnapshotStore) Close() error { return nil }

// Snapshots are stored as JSON strings so every cache backend round-
// trips them the same way.
func (s *CacheSnapshotStore) save(ctx context.Context, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	return s.cache.Set(ctx, key, string(b), snapshotTTL)
}

// load reports (false, nil) on a miss. Entries that no longer decode
// are dropped and reported as a miss so the caller recomputes.
func (s *CacheSnapshotStore) load(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		_ = s.cache.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}
