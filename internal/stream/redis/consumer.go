package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/davisjr/adaptive-rag/internal/batch"
	"github.com/davisjr/adaptive-rag/internal/jobs"
	"github.com/davisjr/adaptive-rag/internal/pipeline"
)

// Consumer reads queued query jobs from a Redis stream, runs them through
// the pipeline, and writes results back to the job store.
type Consumer struct {
	client       *redis.Client
	stream       string
	groupID      string
	consumerName string
	runner       batch.Runner
	store        *jobs.Store
	logger       *zerolog.Logger
}

func NewConsumer(client *redis.Client, stream string, groupID string, consumerName string, runner batch.Runner, store *jobs.Store, logger *zerolog.Logger) *Consumer {
	return &Consumer{
		client:       client,
		stream:       stream,
		groupID:      groupID,
		consumerName: consumerName,
		runner:       runner,
		store:        store,
		logger:       logger,
	}
}

func (c *Consumer) Setup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.groupID, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info().
		Str("stream", c.stream).
		Str("group", c.groupID).
		Str("consumer", c.consumerName).
		Msg("Consumer started")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		msgs, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupID,
			Consumer: c.consumerName,
			Streams:  []string{c.stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				// timeout, no message -> loop again
				continue
			}

			if ctx.Err() != nil {
				return ctx.Err() // context cancelled during block
			}

			c.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, msg := range msgs[0].Messages {
			c.process(ctx, msg)
		}
	}
}

func (c *Consumer) Stop() error {
	// No-op
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	c.logger.Info().Str("id", msg.ID).Msg("Message received")

	payload, ok := msg.Values["payload"].(string)
	if !ok {
		c.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		c.ack(ctx, msg.ID)
		return
	}

	var job jobs.Job
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		c.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		c.ack(ctx, msg.ID) // bad message — ACK to skip it
		return
	}

	if err := c.store.MarkRunning(ctx, job.ID); err != nil {
		c.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job running")
	}

	limits := pipeline.Limits{
		MaxGenerationAttempts: job.Request.MaxGenerationAttempts,
		MaxTransformAttempts:  job.Request.MaxTransformAttempts,
		Temperature:           job.Request.Temperature,
	}
	result, err := c.runner.Run(ctx, job.Request.Strategy, job.Request.Question, job.Request.Collections, limits)
	if err != nil {
		c.logger.Error().Err(err).Str("job_id", job.ID).Msg("Run failed")
		if storeErr := c.store.Fail(ctx, job.ID, err.Error()); storeErr != nil {
			c.logger.Error().Err(storeErr).Str("job_id", job.ID).Msg("Failed to record job failure")
		}
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.store.Complete(ctx, job.ID, result); err != nil {
		c.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to store result")
	}

	c.logger.Info().
		Str("job_id", job.ID).
		Int("generation_attempts", result.Metrics.GenerationAttempts).
		Bool("degraded", result.Metrics.Disclaimer != "").
		Msg("Run complete")

	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, msgID string) {
	if err := c.client.XAck(ctx, c.stream, c.groupID, msgID).Err(); err != nil {
		c.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
