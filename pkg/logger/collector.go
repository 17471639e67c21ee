package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"
)

// Publisher is where flushed digests go. The job queue implements it.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig tunes the digest collector.
type CollectionConfig struct {
	TimeInterval   time.Duration // flush cadence
	CountThreshold int           // distinct entries that force an early flush
	Topic          string        // queue topic for the digest job
	Publisher      Publisher
}

// AggregatedLogEntry is one deduplicated error line. Lines aggregate by
// level, message and call site; Fields holds the values from the first
// occurrence as a sample.
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector batches error lines and periodically publishes them as
// a digest job. A flaky feed that fails every refresh becomes one
// digest entry with a count instead of hundreds of queue messages.
type LogCollector struct {
	cfg     *CollectionConfig
	mu      sync.Mutex
	entries map[string]*AggregatedLogEntry
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func NewLogCollector(cfg *CollectionConfig) *LogCollector {
	c := &LogCollector{
		cfg:     cfg,
		entries: make(map[string]*AggregatedLogEntry),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Add records one log line.
func (c *LogCollector) Add(level, message string, kv map[string]interface{}, caller string) {
	now := time.Now()
	key := level + "|" + message + "|" + caller

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.entries[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    kv,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	full := len(c.entries) >= c.cfg.CountThreshold
	c.mu.Unlock()

	if full {
		c.publishAsync(c.drain())
	}
}

// Close stops the flush loop and publishes what is buffered. The final
// publish is synchronous so callers can order it before queue drain.
func (c *LogCollector) Close() {
	c.once.Do(func() {
		close(c.done)
		c.wg.Wait()
		c.publish(c.drain())
	})
}

func (c *LogCollector) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.publishAsync(c.drain())
		case <-c.done:
			return
		}
	}
}

// drain swaps out the buffered entries.
func (c *LogCollector) drain() []AggregatedLogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return nil
	}
	out := make([]AggregatedLogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, *e)
	}
	c.entries = make(map[string]*AggregatedLogEntry)
	return out
}

// publishAsync keeps the logging path non-blocking.
func (c *LogCollector) publishAsync(entries []AggregatedLogEntry) {
	if len(entries) == 0 {
		return
	}
	go c.publish(entries)
}

func (c *LogCollector) publish(entries []AggregatedLogEntry) {
	if len(entries) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, entries); err != nil {
		// Cannot log through the Logger from here.
		fmt.Fprintf(os.Stderr, "log digest publish failed: %v\n", err)
	}
}
