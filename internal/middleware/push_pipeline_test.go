package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FinGauge/internal/domain/models"
)

type stubSink struct {
	mu      sync.Mutex
	clients int
	frames  []*models.Overview
	err     error
}

func (s *stubSink) Broadcast(ctx context.Context, o *models.Overview) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, o)
	return nil
}

func (s *stubSink) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients
}

func (s *stubSink) setClients(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = n
}

func (s *stubSink) sent() []*models.Overview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Overview(nil), s.frames...)
}

type stubMetrics struct {
	mu    sync.Mutex
	kinds []string
}

func (m *stubMetrics) RecordFetch(feed, outcome string, seconds float64) {}
func (m *stubMetrics) RecordIndicator(name, color string)                {}
func (m *stubMetrics) RecordRefresh(outcome string, seconds float64)     {}
func (m *stubMetrics) RecordClients(n int)                               {}

func (m *stubMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = append(m.kinds, kind)
}

func (m *stubMetrics) has(kind string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func frame(at time.Time) *models.Overview {
	return &models.Overview{
		GeneratedAt: at,
		Tiles:       []models.IndicatorResult{{Name: models.IndicatorCAPE, Color: models.ColorYellow}},
	}
}

func TestProcessRejectsEmptyFrames(t *testing.T) {
	p := NewPushPipeline(&stubSink{}, &stubMetrics{})

	if err := p.Process(nil); err == nil {
		t.Error("nil frame accepted")
	}
	if err := p.Process(&models.Overview{}); err == nil {
		t.Error("tile-less frame accepted")
	}
}

func TestFlushCoalescesToNewestFrame(t *testing.T) {
	sink := &stubSink{clients: 1}
	metrics := &stubMetrics{}
	p := NewPushPipeline(sink, metrics)

	older := frame(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	newer := frame(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC))
	if err := p.Process(older); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if err := p.Process(newer); err != nil {
		t.Fatalf("Process: %v", err)
	}

	p.flush(context.Background())

	got := sink.sent()
	if len(got) != 1 || !got[0].GeneratedAt.Equal(newer.GeneratedAt) {
		t.Errorf("sent frames = %v", got)
	}
	if !metrics.has("push_superseded") {
		t.Error("superseded frame not counted")
	}
}

func TestFlushHoldsFrameWithoutClients(t *testing.T) {
	sink := &stubSink{}
	p := NewPushPipeline(sink, &stubMetrics{})

	f := frame(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	if err := p.Process(f); err != nil {
		t.Fatalf("Process: %v", err)
	}

	p.flush(context.Background())
	if len(sink.sent()) != 0 {
		t.Fatal("pushed with zero clients")
	}

	sink.setClients(2)
	p.flush(context.Background())
	got := sink.sent()
	if len(got) != 1 || !got[0].GeneratedAt.Equal(f.GeneratedAt) {
		t.Errorf("sent frames = %v", got)
	}
}

func TestFlushRetriesAfterSinkError(t *testing.T) {
	sink := &stubSink{clients: 1, err: errors.New("hub busy")}
	metrics := &stubMetrics{}
	p := NewPushPipeline(sink, metrics)

	if err := p.Process(frame(time.Now())); err != nil {
		t.Fatalf("Process: %v", err)
	}

	p.flush(context.Background())
	if !metrics.has("push_flush") {
		t.Error("flush failure not counted")
	}

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	p.flush(context.Background())
	if len(sink.sent()) != 1 {
		t.Errorf("frame lost after sink recovery: %d", len(sink.sent()))
	}
}

func TestStartStopAreIdempotent(t *testing.T) {
	p := NewPushPipeline(&stubSink{}, &stubMetrics{}, WithInterval(10*time.Millisecond))

	ctx := context.Background()
	p.Start(ctx)
	p.Start(ctx)
	p.Stop()
	p.Stop()
}
