// Package scheduler triggers the periodic dashboard recompute.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"FinGauge/internal/usecase"
	applogger "FinGauge/pkg/logger"
	"FinGauge/pkg/queue"
)

const enqueueTimeout = 5 * time.Second

// Scheduler enqueues refresh jobs on a cron cadence. Passes go through
// the queue rather than running inline, so an overlapping tick can
// never recompute concurrently with a running pass.
type Scheduler struct {
	cron    *cron.Cron
	queue   queue.Publisher
	l       *applogger.Logger
	spec    string
	onStart bool
}

// New builds a scheduler over the given queue. The cadence uses the
// standard five-field cron syntax plus descriptors like "@every 30m".
func New(q queue.Publisher, l *applogger.Logger, spec string, onStart bool) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		queue:   q,
		l:       l,
		spec:    spec,
		onStart: onStart,
	}
}

// Start registers the refresh entry and begins ticking. With on_start
// set, one pass is enqueued immediately so the dashboard warms up
// before the first cron boundary.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.Enqueue("cron") }); err != nil {
		return fmt.Errorf("register refresh entry %q: %w", s.spec, err)
	}
	if s.onStart {
		s.Enqueue("startup")
	}
	s.cron.Start()
	s.l.Info("scheduler started", applogger.String("spec", s.spec))
	return nil
}

// Stop halts the ticker and waits for an in-flight entry to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.l.Info("scheduler stopped")
}

// Enqueue publishes one refresh request. Exported so operators can
// trigger a pass outside the cron cadence.
func (s *Scheduler) Enqueue(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	if err := s.queue.PublishMessage(ctx, usecase.TypeRefresh, usecase.RefreshPayload{Reason: reason}); err != nil {
		s.l.Error("refresh enqueue failed", applogger.String("reason", reason), applogger.Error(err))
		return
	}
	s.l.Debug("refresh enqueued", applogger.String("reason", reason))
}
