// Package jobs turns processing requests into durable queued jobs and owns
// the job status lifecycle. Every public operation returns a normal value;
// transport and storage faults are caught here, logged, and converted.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/mediaforge/mediaforge/internal/jobstore"
	"github.com/mediaforge/mediaforge/internal/media"
)

// TypeProcessMedia is the asynq task type of a queued processing job.
const TypeProcessMedia = "mediaforge:process"

// Status values written to the job store.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusNotFound  = "not_found"
	StatusUnknown   = "unknown"
)

// DefaultRetentionDays is how long finished job records are kept before the
// sweep removes them.
const DefaultRetentionDays = 7

// Payload is the job message carried through the queue transport.
type Payload struct {
	JobID      string          `json:"jobId"`
	InputPath  string          `json:"inputPath"`
	OutputPath string          `json:"outputPath"`
	Config     json.RawMessage `json:"config,omitempty"`
}

// Enqueuer is the queue-producing side of the transport. *asynq.Client
// satisfies it; tests substitute a fake.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service is the async job service.
type Service struct {
	enqueuer Enqueuer
	store    jobstore.Store
	queue    string
	logger   *zap.Logger
}

func NewService(enqueuer Enqueuer, store jobstore.Store, queue string, logger *zap.Logger) *Service {
	return &Service{
		enqueuer: enqueuer,
		store:    store,
		queue:    queue,
		logger:   logger,
	}
}

// QueueProcessing generates a job id, enqueues a processing message and
// records the queued status. The returned result always carries the job id,
// success or not, and never an output path: no artifact exists yet.
func (s *Service) QueueProcessing(ctx context.Context, inputPath, outputPath string, cfg media.Config, delay time.Duration) *media.Result {
	jobID := uuid.New().String()

	configData, err := media.MarshalConfig(cfg)
	if err != nil {
		return s.enqueueFailure(jobID, "failed to encode processing config", err)
	}

	payload, err := json.Marshal(Payload{
		JobID:      jobID,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Config:     configData,
	})
	if err != nil {
		return s.enqueueFailure(jobID, "failed to encode job payload", err)
	}

	opts := []asynq.Option{asynq.Queue(s.queue)}
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	if _, err := s.enqueuer.EnqueueContext(ctx, asynq.NewTask(TypeProcessMedia, payload), opts...); err != nil {
		return s.enqueueFailure(jobID, "failed to enqueue processing job", err)
	}

	if err := s.UpdateJobStatus(ctx, jobID, map[string]interface{}{
		"status":      StatusQueued,
		"input_path":  inputPath,
		"output_path": outputPath,
	}); err != nil {
		// The job is already on the queue; the worker will write status as
		// it runs, so a failed initial write is not fatal.
		s.logger.Warn("failed to record queued status", zap.String("job_id", jobID), zap.Error(err))
	}

	s.logger.Info("job queued",
		zap.String("job_id", jobID),
		zap.String("input", inputPath),
		zap.Duration("delay", delay),
	)

	result := media.Succeed("")
	result.JobID = jobID
	return result.
		WithMeta("job_id", jobID).
		WithMeta("status", StatusQueued)
}

func (s *Service) enqueueFailure(jobID, message string, err error) *media.Result {
	s.logger.Error(message, zap.String("job_id", jobID), zap.Error(err))
	result := media.Failure(fmt.Sprintf("%s: %v", message, err))
	result.JobID = jobID
	return result.
		WithMeta("job_id", jobID).
		WithMeta("error_type", fmt.Sprintf("%T", err))
}

// GetJobStatus reads the persisted record for a job id. A missing record
// yields a synthetic not_found status and an unreadable one yields unknown;
// neither is an error.
func (s *Service) GetJobStatus(ctx context.Context, jobID string) map[string]interface{} {
	record, err := s.store.Get(ctx, jobID)
	if err != nil {
		s.logger.Warn("failed to read job status", zap.String("job_id", jobID), zap.Error(err))
		return map[string]interface{}{"job_id": jobID, "status": StatusUnknown}
	}
	if record == nil {
		return map[string]interface{}{"job_id": jobID, "status": StatusNotFound}
	}
	return record
}

// UpdateJobStatus merges the partial status over the base record
// {job_id, updated_at: now} and persists it. Last-writer-wins.
func (s *Service) UpdateJobStatus(ctx context.Context, jobID string, partial map[string]interface{}) error {
	record := map[string]interface{}{
		"job_id":     jobID,
		"updated_at": time.Now(),
	}
	for k, v := range partial {
		record[k] = v
	}
	if err := s.store.Put(ctx, jobID, record); err != nil {
		return fmt.Errorf("failed to persist status for job %s: %w", jobID, err)
	}
	return nil
}

// CancelJob flips the job's status to cancelled. Cancellation is cooperative:
// an in-flight worker observes the flag at its next checkpoint; nothing is
// preempted. Returns false when the status write fails.
func (s *Service) CancelJob(ctx context.Context, jobID string) bool {
	err := s.UpdateJobStatus(ctx, jobID, map[string]interface{}{
		"status":  StatusCancelled,
		"message": "job cancelled by user",
	})
	if err != nil {
		s.logger.Error("failed to cancel job", zap.String("job_id", jobID), zap.Error(err))
		return false
	}
	s.logger.Info("job cancelled", zap.String("job_id", jobID))
	return true
}

// CleanupOldJobs removes job records last written more than daysOld days ago
// and returns the count removed. The sweep is best effort: it may race with
// concurrent status writes around the cutoff boundary.
func (s *Service) CleanupOldJobs(ctx context.Context, daysOld int) int {
	cutoff := time.Now().AddDate(0, 0, -daysOld)
	removed, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error("job cleanup failed", zap.Int("days_old", daysOld), zap.Error(err))
		return 0
	}
	if removed > 0 {
		s.logger.Info("old jobs removed", zap.Int("count", removed), zap.Int("days_old", daysOld))
	}
	return removed
}
