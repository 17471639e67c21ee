package di

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"FinGauge/internal/domain/models"
	"FinGauge/internal/domain/repository"
	"FinGauge/internal/domain/service"
	"FinGauge/internal/handler/api"
	wshub "FinGauge/internal/handler/ws"
	mid "FinGauge/internal/middleware"
	internalrepo "FinGauge/internal/repository"
	"FinGauge/internal/scheduler"
	"FinGauge/internal/service/feed"
	"FinGauge/internal/services/indicators"
	"FinGauge/internal/services/scoring"
	"FinGauge/internal/usecase"
	pkgcache "FinGauge/pkg/cache"
	"FinGauge/pkg/config"
	xhttp "FinGauge/pkg/http"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/metrics"
	"FinGauge/pkg/queue"
	"FinGauge/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheService picks the feed/snapshot cache backend: a layered
// memory-over-Redis cache when Redis is configured, in-process memory
// otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Redis.Enabled {
		c, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(cfg.Redis.Host),
			pkgcache.WithRedisPort(cfg.Redis.Port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return pkgcache.NewLayeredCache(c,
			pkgcache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize)), nil
	}
	return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
}

// ProvideMarketData builds the upstream feed client and wraps it in the
// caching layer so repeated passes reuse fresh feed data.
func ProvideMarketData(
	cfg *config.Config,
	l *applogger.Logger,
	m repository.Metrics,
	svc pkgcache.Service,
) repository.MarketData {
	client := feed.New(cfg, l)
	client.SetMetrics(m)
	return feed.NewCachedSource(client, svc, cfg, l)
}

// ProvideSnapshotStore creates the overview/trend snapshot store.
func ProvideSnapshotStore(svc pkgcache.Service) repository.SnapshotStore {
	return internalrepo.NewCacheSnapshotStore(svc)
}

// ProvideEngine builds the indicator engine, applying any band edges
// overridden in config.
func ProvideEngine(cfg *config.Config) (service.IndicatorEngine, error) {
	policies := scoring.DefaultPolicies()
	for name, t := range cfg.Thresholds {
		if err := policies.ApplyEdges(name, t.Yellow, t.Red); err != nil {
			return nil, fmt.Errorf("thresholds.%s: %w", name, err)
		}
	}
	return indicators.NewEngine(policies), nil
}

// ProvideOverviewUsecase creates the overview use case.
func ProvideOverviewUsecase(
	data repository.MarketData,
	store repository.SnapshotStore,
	engine service.IndicatorEngine,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.OverviewUsecase {
	return usecase.NewOverviewUsecase(data, store, engine, m, l)
}

// ProvideTrendUsecase creates the asset trend use case.
func ProvideTrendUsecase(
	data repository.MarketData,
	store repository.SnapshotStore,
	engine service.IndicatorEngine,
	l *applogger.Logger,
) *usecase.TrendUsecase {
	return usecase.NewTrendUsecase(data, store, engine, l)
}

// ProvideHub creates the websocket hub.
func ProvideHub(m repository.Metrics, l *applogger.Logger) *wshub.Hub {
	return wshub.NewHub(m, l)
}

// ProvidePipeline creates the coalescing push pipeline in front of the
// hub.
func ProvidePipeline(hub *wshub.Hub, m repository.Metrics, cfg *config.Config) *mid.PushPipeline {
	return mid.NewPushPipeline(hub, m, mid.WithInterval(cfg.Push.Interval.Std()))
}

// ProvideRefreshJob creates the queue job that recomputes the overview.
// With push enabled, finished passes flow into the pipeline.
func ProvideRefreshJob(
	overview *usecase.OverviewUsecase,
	pipeline *mid.PushPipeline,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.RefreshJob {
	job := usecase.NewRefreshJob(overview, l, cfg.Refresh.Timeout.Std())
	if cfg.Push.Enabled {
		job.Notify(func(o *models.Overview) {
			if err := pipeline.Process(o); err != nil {
				l.Warn("push enqueue failed", applogger.Error(err))
			}
		})
	}
	return job
}

// ProvideLogDigestJob creates the queue job that consumes aggregated
// log digests.
func ProvideLogDigestJob(m repository.Metrics, l *applogger.Logger) *usecase.LogDigestJob {
	return usecase.NewLogDigestJob(m, l)
}

// ProvideQueue picks the queue backend from config and registers the
// background jobs.
func ProvideQueue(
	cfg *config.Config,
	l *applogger.Logger,
	refresh *usecase.RefreshJob,
	digest *usecase.LogDigestJob,
) queue.Queue {
	qc := &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		QueueSize:  cfg.Queue.QueueSize,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay.Std(),
	}

	var q queue.Queue
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		q = queue.NewRedisQueue(l, qc, client, queue.WithKeyPrefix("fingauge"))
	} else {
		q = queue.NewMemoryQueue(l, qc)
	}

	q.RegisterJobs([]queue.Job{refresh, digest})
	return q
}

// ProvideScheduler creates the cron scheduler that enqueues refresh
// passes.
func ProvideScheduler(q queue.Queue, l *applogger.Logger, cfg *config.Config) *scheduler.Scheduler {
	return scheduler.New(q, l, cfg.Refresh.Spec, cfg.Refresh.OnStart)
}

// ProvideHandler creates the dashboard HTTP handler. Marshaled
// responses are cached in the same backend the feeds use, keyed under
// the resp: prefix.
func ProvideHandler(
	l *applogger.Logger,
	overview *usecase.OverviewUsecase,
	trend *usecase.TrendUsecase,
	store repository.SnapshotStore,
	hub *wshub.Hub,
	svc pkgcache.Service,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewDashboardHandler(l, overview, trend, store, hub)
	h.SetCache(svc)
	h.SetResponseTTL(cfg.Cache.ResponseTTL.Std())
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	q queue.Queue,
	sched *scheduler.Scheduler,
	pipeline *mid.PushPipeline,
	hub *wshub.Hub,
	handler xhttp.Handler,
) *server.App {
	// Repeated error logs are aggregated and drained through the queue.
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   30 * time.Second,
		CountThreshold: 100,
		Topic:          usecase.TypeLogDigest,
		Publisher:      q,
	})
	return server.New(cfg, l, q, sched, pipeline, hub, handler)
}
