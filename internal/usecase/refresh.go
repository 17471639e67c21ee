package usecase

import (
	"context"
	"time"

	"FinGauge/internal/domain/models"
	"FinGauge/internal/domain/repository"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/queue"
)

// Queue message types. TypeLogDigest doubles as the log collector's
// flush topic.
const (
	TypeRefresh   = "refresh.overview"
	TypeLogDigest = "log.digest"
)

// RefreshPayload tags a refresh request with what triggered it.
type RefreshPayload struct {
	Reason string `json:"reason"`
}

// RefreshJob recomputes the dashboard when the scheduler (or an API
// force-refresh) enqueues a pass. The queue runs it on one worker, so
// passes never overlap.
type RefreshJob struct {
	overview *OverviewUsecase
	l        *applogger.Logger
	timeout  time.Duration
	notify   func(*models.Overview)
}

func NewRefreshJob(overview *OverviewUsecase, l *applogger.Logger, timeout time.Duration) *RefreshJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &RefreshJob{overview: overview, l: l, timeout: timeout}
}

// Notify registers a hook called with every freshly computed overview.
// The push pipeline subscribes here.
func (j *RefreshJob) Notify(fn func(*models.Overview)) { j.notify = fn }

func (j *RefreshJob) Name() string { return "overview_refresh" }
func (j *RefreshJob) Type() string { return TypeRefresh }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	reason := "unknown"
	if p, err := queue.ParsePayload[RefreshPayload](payload); err == nil && p.Reason != "" {
		reason = p.Reason
	}
	j.l.Info("refresh pass starting", applogger.String("reason", reason))

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	o, err := j.overview.Refresh(ctx)
	if err != nil {
		return err
	}
	if j.notify != nil {
		j.notify(o)
	}
	return nil
}

// LogDigestJob turns the log collector's aggregated error batches into
// error counters and one summary line. One counter increment per
// distinct signature; the raw counts go into the summary.
type LogDigestJob struct {
	metrics repository.Metrics
	l       *applogger.Logger
}

func NewLogDigestJob(metrics repository.Metrics, l *applogger.Logger) *LogDigestJob {
	return &LogDigestJob{metrics: metrics, l: l}
}

func (j *LogDigestJob) Name() string { return "log_digest" }
func (j *LogDigestJob) Type() string { return TypeLogDigest }

func (j *LogDigestJob) Handle(ctx context.Context, payload interface{}) error {
	entries, err := queue.ParsePayload[[]applogger.AggregatedLogEntry](payload)
	if err != nil {
		return err
	}

	total := 0
	for _, e := range *entries {
		total += e.Count
		j.metrics.RecordError("log_" + e.Level)
	}
	j.l.Info("log digest",
		applogger.Int("unique", len(*entries)),
		applogger.Int("total", total),
	)
	return nil
}
