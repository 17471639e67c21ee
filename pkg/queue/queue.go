// Package queue runs the dashboard's background jobs. The scheduler
// publishes refresh triggers and the log collector publishes digest
// batches; workers pull messages off the backend, dispatch them to the
// registered job for their type, and retry failures a bounded number
// of times before parking the message in a dead letter list.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Publisher enqueues messages without exposing worker lifecycle.
// Components that only produce work depend on this instead of Queue.
type Publisher interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// Queue is the full backend surface: publishing plus job registration
// and worker lifecycle. MemoryQueue and RedisQueue both satisfy it.
type Queue interface {
	Publisher
	RegisterJobs(jobs []Job)
	RegisterJob(job Job)
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
	Start() error
	Stop(ctx context.Context) error
}

// QueueConfig sizes the worker pool and the retry policy shared by
// both backends.
type QueueConfig struct {
	Workers    int
	QueueSize  int
	RetryLimit int
	RetryDelay time.Duration
}

// normalize fills unset fields with workable defaults.
func (c *QueueConfig) normalize() {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 10 * time.Second
	}
}

// Message is the envelope moved through a backend. The in-memory
// backend carries Payload as the value that was published; the Redis
// backend round-trips it through JSON, so consumers see
// json.RawMessage there.
type Message struct {
	ID        string
	Type      string
	Payload   interface{}
	Attempts  int
	Timestamp time.Time
}

func newMessage(msgType string, payload interface{}) Message {
	return Message{
		ID:        strconv.FormatInt(time.Now().UnixNano(), 10),
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// ParsePayload recovers a typed payload from whatever form the backend
// delivered it in.
func ParsePayload[T any](payload interface{}) (*T, error) {
	var result T

	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case map[string]interface{}, []interface{}:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("re-encode payload: %w", err)
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return &result, nil
	case json.RawMessage:
		if err := json.Unmarshal(p, &result); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return &result, nil
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}

// awaitWorkers blocks until the pool drains or ctx expires.
func awaitWorkers(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
