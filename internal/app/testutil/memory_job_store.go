package testutil

import (
	"context"
	"sync"
	"time"

	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// MemoryJobStore keeps job records in memory, like repository.RedisJobStore without a TTL.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]model.Job)}
}

func (s *MemoryJobStore) SaveJob(ctx context.Context, job model.Job) error {
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[string(job.Kind)+"/"+job.JobID] = job
	return nil
}

func (s *MemoryJobStore) GetJob(ctx context.Context, kind model.JobKind, jobID string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[string(kind)+"/"+jobID]
	if !ok {
		return nil, apperrors.NotFound(string(kind)+" job", jobID)
	}
	return &job, nil
}
