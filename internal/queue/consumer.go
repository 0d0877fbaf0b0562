// Package queue consumes processing jobs from the asynq transport. The
// handler runs the synchronous pipeline and records status transitions; the
// transport provides at-least-once delivery with one worker per job.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/mediaforge/mediaforge/internal/jobs"
	"github.com/mediaforge/mediaforge/internal/media"
	"github.com/mediaforge/mediaforge/internal/orchestrator"
)

// Queue names with their scheduling weights.
var queuePriorities = map[string]int{
	"mediaforge:critical": 6,
	"mediaforge:default":  3,
	"mediaforge:low":      1,
}

// Consumer wraps the asynq server and the processing handler.
type Consumer struct {
	server *asynq.Server
	orch   *orchestrator.Orchestrator
	jobs   *jobs.Service
	logger *zap.Logger
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	RedisURL     string
	Concurrency  int
	Orchestrator *orchestrator.Orchestrator
	Jobs         *jobs.Service
	Logger       *zap.Logger
}

func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	logger := cfg.Logger
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      queuePriorities,
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				// Exponential backoff: 1min, 2min, 4min...
				return time.Duration(1<<uint(n)) * time.Minute
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
		},
	)

	return &Consumer{
		server: server,
		orch:   cfg.Orchestrator,
		jobs:   cfg.Jobs,
		logger: logger,
	}, nil
}

// Start blocks serving tasks until Stop is called.
func (c *Consumer) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(jobs.TypeProcessMedia, c.handleProcessTask)

	c.logger.Info("queue consumer starting")
	if err := c.server.Run(mux); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	return nil
}

// Stop shuts the consumer down gracefully, letting in-flight jobs finish.
func (c *Consumer) Stop() {
	c.logger.Info("queue consumer stopping")
	c.server.Shutdown()
}

func (c *Consumer) handleProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload jobs.Payload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal job payload: %v: %w", err, asynq.SkipRetry)
	}

	// Cooperative cancellation checkpoint: a job cancelled while queued is
	// dropped without running.
	status := c.jobs.GetJobStatus(ctx, payload.JobID)
	if status["status"] == jobs.StatusCancelled {
		c.logger.Info("skipping cancelled job", zap.String("job_id", payload.JobID))
		return nil
	}

	cfg, err := media.UnmarshalConfig(payload.Config)
	if err != nil {
		c.recordFailure(ctx, payload.JobID, fmt.Sprintf("invalid job config: %v", err))
		return fmt.Errorf("invalid config for job %s: %v: %w", payload.JobID, err, asynq.SkipRetry)
	}

	c.logger.Info("processing job",
		zap.String("job_id", payload.JobID),
		zap.String("input", payload.InputPath),
	)
	c.updateStatus(ctx, payload.JobID, map[string]interface{}{
		"status":   jobs.StatusRunning,
		"progress": 0,
	})

	result := c.orch.Process(ctx, payload.InputPath, payload.OutputPath, cfg, false)
	if !result.IsSuccess() {
		c.recordFailure(ctx, payload.JobID, result.ErrorMessage)
		// The pipeline already converted the fault; retrying a deterministic
		// transcode failure would just repeat it.
		return fmt.Errorf("job %s failed: %s: %w", payload.JobID, result.ErrorMessage, asynq.SkipRetry)
	}

	c.updateStatus(ctx, payload.JobID, map[string]interface{}{
		"status":          jobs.StatusCompleted,
		"progress":        100,
		"output_path":     result.OutputPath,
		"processed_files": len(result.ProcessedFiles),
		"processing_time": result.ProcessingTime,
	})
	c.logger.Info("job completed",
		zap.String("job_id", payload.JobID),
		zap.Float64("processing_time", result.ProcessingTime),
	)
	return nil
}

func (c *Consumer) recordFailure(ctx context.Context, jobID, message string) {
	c.updateStatus(ctx, jobID, map[string]interface{}{
		"status": jobs.StatusFailed,
		"error":  message,
	})
}

func (c *Consumer) updateStatus(ctx context.Context, jobID string, partial map[string]interface{}) {
	if err := c.jobs.UpdateJobStatus(ctx, jobID, partial); err != nil {
		c.logger.Warn("status write failed", zap.String("job_id", jobID), zap.Error(err))
	}
}
