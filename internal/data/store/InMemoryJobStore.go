package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/DocAssistant/internal/config"
	"github.com/akolanti/DocAssistant/internal/domain/jobModel"
	"github.com/akolanti/DocAssistant/pkg/logger_i"
)

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore is the fallback when Redis is unreachable. Entries expire
// after the same TTL the Redis store uses; expired jobs are dropped lazily.
type InMemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[string]storedJob
	ttl    time.Duration
	now    func() time.Time
	logger *logger_i.Logger
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return newInMemoryJobStore(config.RedisJobStoreTTL, time.Now)
}

func newInMemoryJobStore(ttl time.Duration, now func() time.Time) *InMemoryJobStore {
	return &InMemoryJobStore{
		jobs:   make(map[string]storedJob),
		ttl:    ttl,
		now:    now,
		logger: logger_i.NewLogger("InMem JobStore"),
	}
}

func (s *InMemoryJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweepLocked(now)
	s.jobs[job.Id] = storedJob{job: job, expiresAt: now.Add(s.ttl)}
	s.logger.WithTrace(ctx).Debug("Saved job to store", "jobId", job.Id, "pending", len(s.jobs))
	return nil
}

func (s *InMemoryJobStore) GetJob(_ context.Context, jobId string) (jobModel.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, found := s.jobs[jobId]
	if !found || !s.now().Before(entry.expiresAt) {
		return jobModel.Job{}, false
	}
	return entry.job, true
}

func (s *InMemoryJobStore) DeleteJob(_ context.Context, jobId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobId)
}

func (s *InMemoryJobStore) sweepLocked(now time.Time) {
	for id, entry := range s.jobs {
		if !now.Before(entry.expiresAt) {
			delete(s.jobs, id)
		}
	}
}
