package repository

import (
	"context"

	"FinGauge/internal/domain/models"
)

// SnapshotStore keeps the most recent computed dashboard state so page
// loads and restarts do not wait on a full recompute. Load methods
// return nil without error when no snapshot exists.
type SnapshotStore interface {
	SaveOverview(ctx context.Context, o *models.Overview) error
	LoadOverview(ctx context.Context) (*models.Overview, error)
	SaveTrend(ctx context.Context, key string, t *models.TrendResult) error
	LoadTrend(ctx context.Context, key string) (*models.TrendResult, error)
	Health(ctx context.Context) error
	Close() error
}
