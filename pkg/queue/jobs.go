package queue

import (
	"context"
	"sync"

	"FinGauge/pkg/logger"
)

// Job consumes one message type.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type the job consumes.
	Type() string

	// Handle processes a single payload.
	Handle(ctx context.Context, payload interface{}) error
}

// jobSet is the type-to-job registry embedded in both backends. Its
// lock covers only the registry, not backend lifecycle state.
type jobSet struct {
	mu  sync.RWMutex
	m   map[string]Job
	lgr *logger.Logger
}

func newJobSet(lgr *logger.Logger) *jobSet {
	return &jobSet{m: make(map[string]Job), lgr: lgr}
}

// RegisterJobs registers multiple jobs.
func (s *jobSet) RegisterJobs(jobs []Job) {
	for _, job := range jobs {
		s.RegisterJob(job)
	}
}

// RegisterJob registers a single job. The first registration for a
// message type wins.
func (s *jobSet) RegisterJob(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[job.Type()]; exists {
		s.lgr.Warn("job already registered", logger.String("job", job.Name()))
		return
	}

	s.m[job.Type()] = job
	s.lgr.Info("job registered",
		logger.String("job", job.Name()),
		logger.String("type", job.Type()))
}

func (s *jobSet) job(msgType string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.m[msgType]
	return j, ok
}

func (s *jobSet) has(msgType string) bool {
	_, ok := s.job(msgType)
	return ok
}
