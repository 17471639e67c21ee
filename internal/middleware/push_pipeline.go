package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinGauge/internal/domain/models"
	domrepo "FinGauge/internal/domain/repository"
)

// Sink is the downstream the pipeline pushes overview frames to.
// Broadcast must not block; a busy sink returns an error and the frame
// stays buffered for the next tick.
type Sink interface {
	Broadcast(ctx context.Context, o *models.Overview) error
	Clients() int
}

// PushPipeline sits between the refresher and the websocket hub. It
// paces pushes to one frame per interval, keeps only the newest frame
// while the sink is busy or has no clients, and drops superseded
// frames instead of queueing them.
type PushPipeline struct {
	sink     Sink
	metrics  domrepo.Metrics
	interval time.Duration

	mu      sync.Mutex
	pending *models.Overview
	started bool
	stopCh  chan struct{}
}

type PipelineOption func(*PushPipeline)

// WithInterval sets the minimum spacing between pushes.
func WithInterval(d time.Duration) PipelineOption {
	return func(p *PushPipeline) {
		if d > 0 {
			p.interval = d
		}
	}
}

// NewPushPipeline creates a pipeline in front of the given sink.
func NewPushPipeline(sink Sink, metrics domrepo.Metrics, opts ...PipelineOption) *PushPipeline {
	p := &PushPipeline{
		sink:     sink,
		metrics:  metrics,
		interval: 5 * time.Second,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the paced flush loop.
func (p *PushPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.flush(ctx)
			}
		}
	}()
}

// Stop stops the flush loop. Any pending frame stays buffered.
func (p *PushPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process accepts a freshly computed overview. A frame that arrives
// before the previous one was pushed supersedes it.
func (p *PushPipeline) Process(o *models.Overview) error {
	if err := validateFrame(o); err != nil {
		p.metrics.RecordError("push_validate")
		return err
	}
	p.mu.Lock()
	if p.pending != nil {
		p.metrics.RecordError("push_superseded")
	}
	p.pending = o
	p.mu.Unlock()
	return nil
}

func (p *PushPipeline) flush(ctx context.Context) {
	p.mu.Lock()
	o := p.pending
	p.pending = nil
	p.mu.Unlock()
	if o == nil {
		return
	}

	// Nobody listening: keep the frame for whoever connects next.
	if p.sink.Clients() == 0 {
		p.keep(o)
		return
	}

	if err := p.sink.Broadcast(ctx, o); err != nil {
		p.metrics.RecordError("push_flush")
		p.keep(o)
	}
}

// keep re-buffers a frame unless a newer one arrived meanwhile.
func (p *PushPipeline) keep(o *models.Overview) {
	p.mu.Lock()
	if p.pending == nil {
		p.pending = o
	}
	p.mu.Unlock()
}

func validateFrame(o *models.Overview) error {
	if o == nil {
		return fmt.Errorf("overview nil")
	}
	if len(o.Tiles) == 0 {
		return fmt.Errorf("overview has no tiles")
	}
	return nil
}
