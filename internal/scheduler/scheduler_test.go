package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FinGauge/internal/usecase"
	applogger "FinGauge/pkg/logger"
)

type capturedMessage struct {
	msgType string
	payload interface{}
}

type stubQueue struct {
	mu       sync.Mutex
	messages []capturedMessage
	err      error
}

func (q *stubQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.messages = append(q.messages, capturedMessage{msgType: msgType, payload: payload})
	return nil
}

func (q *stubQueue) all() []capturedMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]capturedMessage, len(q.messages))
	copy(out, q.messages)
	return out
}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func TestStartEnqueuesStartupPass(t *testing.T) {
	q := &stubQueue{}
	s := New(q, testLogger(t), "*/30 * * * *", true)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	msgs := q.all()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if msgs[0].msgType != usecase.TypeRefresh {
		t.Errorf("type = %q", msgs[0].msgType)
	}
	p, ok := msgs[0].payload.(usecase.RefreshPayload)
	if !ok || p.Reason != "startup" {
		t.Errorf("payload = %#v", msgs[0].payload)
	}
}

func TestStartWithoutOnStartStaysQuiet(t *testing.T) {
	q := &stubQueue{}
	s := New(q, testLogger(t), "*/30 * * * *", false)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	if n := len(q.all()); n != 0 {
		t.Errorf("messages = %d, want 0", n)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New(&stubQueue{}, testLogger(t), "not a cron spec", false)
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}

func TestCronTickEnqueues(t *testing.T) {
	q := &stubQueue{}
	s := New(q, testLogger(t), "@every 1s", false)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for len(q.all()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no tick within deadline")
		}
		time.Sleep(20 * time.Millisecond)
	}

	msgs := q.all()
	if p, ok := msgs[0].payload.(usecase.RefreshPayload); !ok || p.Reason != "cron" {
		t.Errorf("payload = %#v", msgs[0].payload)
	}
}

func TestEnqueueSurvivesPublishError(t *testing.T) {
	q := &stubQueue{err: errors.New("queue down")}
	s := New(q, testLogger(t), "*/30 * * * *", false)

	// Must not panic; the error is logged and dropped.
	s.Enqueue("manual")

	if n := len(q.all()); n != 0 {
		t.Errorf("messages = %d, want 0", n)
	}
}
