package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/model"
)

// JobStore keeps job records for providers that have no job API of their own.
type JobStore interface {
	SaveJob(ctx context.Context, job model.Job) error
	GetJob(ctx context.Context, kind model.JobKind, jobID string) (*model.Job, error)
}

// DefaultJobTTL bounds how long finished job records stay queryable.
const DefaultJobTTL = 7 * 24 * time.Hour

// RedisJobStore stores job records as JSON values in Redis.
type RedisJobStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisJobStore(client *redis.Client, ttl time.Duration) *RedisJobStore {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	return &RedisJobStore{client: client, prefix: "voice-relay:job", ttl: ttl}
}

func (s *RedisJobStore) key(kind model.JobKind, jobID string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, jobID)
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job model.Job) error {
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := s.client.Set(ctx, s.key(job.Kind, job.JobID), data, s.ttl).Err(); err != nil {
		return apperrors.Service("redis.Set", err)
	}
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, kind model.JobKind, jobID string) (*model.Job, error) {
	data, err := s.client.Get(ctx, s.key(kind, jobID)).Bytes()
	if err == redis.Nil {
		return nil, apperrors.NotFound(string(kind)+" job", jobID)
	}
	if err != nil {
		return nil, apperrors.Service("redis.Get", err)
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}
	return &job, nil
}

// Ping checks the Redis connection.
func (s *RedisJobStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
