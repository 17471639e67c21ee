package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"FinGauge/pkg/logger"
)

// MemoryQueue is an in-process queue with the same job semantics as
// RedisQueue, used when no Redis is configured.
type MemoryQueue struct {
	*jobSet

	logger    *logger.Logger
	config    *QueueConfig
	messages  chan Message
	retries   []retryEntry
	dead      []Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
}

type retryEntry struct {
	msg   Message
	after time.Time
}

// NewMemoryQueue creates a new in-memory queue.
func NewMemoryQueue(lgr *logger.Logger, config *QueueConfig) *MemoryQueue {
	if config == nil {
		config = &QueueConfig{}
	}
	config.normalize()

	ctx, cancel := context.WithCancel(context.Background())

	return &MemoryQueue{
		jobSet:   newJobSet(lgr),
		logger:   lgr,
		config:   config,
		messages: make(chan Message, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the queue workers.
func (m *MemoryQueue) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("queue already running")
	}
	m.isRunning = true

	for i := 0; i < m.config.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	m.wg.Add(1)
	go m.retryProcessor()

	m.logger.Info("memory queue started", logger.Int("workers", m.config.Workers))
	return nil
}

// Stop gracefully stops the queue.
func (m *MemoryQueue) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return nil
	}
	m.isRunning = false
	m.mu.Unlock()

	m.cancel()
	if err := awaitWorkers(ctx, &m.wg); err != nil {
		m.logger.Warn("queue workers did not drain", logger.Error(err))
		return fmt.Errorf("stop queue: %w", err)
	}
	m.logger.Info("memory queue stopped")
	return nil
}

// Enqueue adds a message to the queue.
func (m *MemoryQueue) Enqueue(ctx context.Context, msgType string, payload interface{}) error {
	m.mu.RLock()
	running := m.isRunning
	m.mu.RUnlock()

	if !running {
		return fmt.Errorf("queue not running")
	}
	if !m.has(msgType) {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}

	select {
	case m.messages <- newMessage(msgType, payload):
		return nil
	default:
		return fmt.Errorf("queue full")
	}
}

// PublishMessage publishes a message (implements Publisher).
func (m *MemoryQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	return m.Enqueue(ctx, msgType, payload)
}

// DeadLetters returns messages that exhausted their retries.
func (m *MemoryQueue) DeadLetters() []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Message, len(m.dead))
	copy(out, m.dead)
	return out
}

func (m *MemoryQueue) worker(id int) {
	defer m.wg.Done()
	m.logger.Info("queue worker started", logger.Int("worker_id", id))

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("queue worker cancelled", logger.Int("worker_id", id))
			return
		case msg := <-m.messages:
			m.processMessage(msg)
		}
	}
}

func (m *MemoryQueue) processMessage(msg Message) {
	job, ok := m.job(msg.Type)
	if !ok {
		m.logger.Error("no job found",
			logger.String("type", msg.Type),
			logger.String("id", msg.ID))
		return
	}

	err := job.Handle(m.ctx, msg.Payload)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	m.logger.Error("message processing error",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()),
		logger.Int("attempt", msg.Attempts+1),
		logger.Error(err))

	if msg.Attempts < m.config.RetryLimit {
		msg.Attempts++
		m.mu.Lock()
		m.retries = append(m.retries, retryEntry{msg: msg, after: time.Now().Add(m.config.RetryDelay)})
		m.mu.Unlock()
		return
	}

	m.logger.Error("max retries reached",
		logger.String("id", msg.ID),
		logger.String("job", job.Name()))
	m.mu.Lock()
	m.dead = append(m.dead, msg)
	m.mu.Unlock()
}

func (m *MemoryQueue) retryProcessor() {
	defer m.wg.Done()
	m.logger.Info("retry processor started")

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			m.logger.Info("retry processor cancelled")
			return
		case <-ticker.C:
			m.moveDueRetries()
		}
	}
}

func (m *MemoryQueue) moveDueRetries() {
	now := time.Now()

	m.mu.Lock()
	var due []Message
	rest := m.retries[:0]
	for _, r := range m.retries {
		if r.after.After(now) {
			rest = append(rest, r)
		} else {
			due = append(due, r.msg)
		}
	}
	m.retries = rest
	m.mu.Unlock()

	for _, msg := range due {
		select {
		case m.messages <- msg:
		default:
			m.mu.Lock()
			m.retries = append(m.retries, retryEntry{msg: msg, after: now.Add(m.config.RetryDelay)})
			m.mu.Unlock()
		}
	}
}
