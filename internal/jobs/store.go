package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/batch"
	"github.com/davisjr/adaptive-rag/internal/models"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrNotFound is returned for job IDs with no record, including records
// already expired.
var ErrNotFound = errors.New("job not found")

// Job is the persisted state of one asynchronous query.
type Job struct {
	ID          string             `json:"id"`
	Status      Status             `json:"status"`
	Request     batch.QueryRequest `json:"request"`
	Result      *models.RunResult  `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	SubmittedAt time.Time          `json:"submitted_at"`
	FinishedAt  *time.Time         `json:"finished_at,omitempty"`
}

// Store keeps job records in Redis and feeds the work stream the consumer
// reads from. Records expire after the configured TTL.
type Store struct {
	client *redis.Client
	stream string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewStore(client *redis.Client, stream string, ttl time.Duration, logger *zerolog.Logger) *Store {
	return &Store{
		client: client,
		stream: stream,
		ttl:    ttl,
		logger: logger.With().Str("component", "job_store").Logger(),
	}
}

func key(jobID string) string {
	return "job:" + jobID
}

// Enqueue records the job as queued and publishes it to the work stream.
func (s *Store) Enqueue(ctx context.Context, request batch.QueryRequest) (*Job, error) {
	job := &Job{
		ID:          uuid.NewString(),
		Status:      StatusQueued,
		Request:     request,
		SubmittedAt: time.Now().UTC(),
	}
	if err := s.save(ctx, job); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to publish job: %w", err)
	}

	s.logger.Info().Str("job_id", job.ID).Msg("Job enqueued")
	return job, nil
}

func (s *Store) Get(ctx context.Context, jobID string) (*Job, error) {
	raw, err := s.client.Get(ctx, key(jobID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}
	return &job, nil
}

// MarkRunning transitions a queued job to running.
func (s *Store) MarkRunning(ctx context.Context, jobID string) error {
	return s.update(ctx, jobID, func(job *Job) {
		job.Status = StatusRunning
	})
}

// Complete stores the result and transitions the job to completed.
func (s *Store) Complete(ctx context.Context, jobID string, result *models.RunResult) error {
	return s.update(ctx, jobID, func(job *Job) {
		now := time.Now().UTC()
		job.Status = StatusCompleted
		job.Result = result
		job.FinishedAt = &now
	})
}

// Fail records the failure reason and transitions the job to failed.
func (s *Store) Fail(ctx context.Context, jobID string, reason string) error {
	return s.update(ctx, jobID, func(job *Job) {
		now := time.Now().UTC()
		job.Status = StatusFailed
		job.Error = reason
		job.FinishedAt = &now
	})
}

func (s *Store) update(ctx context.Context, jobID string, mutate func(*Job)) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	mutate(job)
	return s.save(ctx, job)
}

func (s *Store) save(ctx context.Context, job *Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, key(job.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}
