package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediaforge/mediaforge/internal/jobstore"
	"github.com/mediaforge/mediaforge/internal/media"
)

type fakeEnqueuer struct {
	err   error
	tasks []*asynq.Task
	opts  [][]asynq.Option
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{}, nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (map[string]interface{}, error) {
	return nil, errors.New("corrupt record")
}
func (failingStore) Put(context.Context, string, map[string]interface{}) error {
	return errors.New("disk full")
}
func (failingStore) DeleteOlderThan(context.Context, time.Time) (int, error) {
	return 0, errors.New("disk on fire")
}
func (failingStore) Close() error { return nil }

func newTestService(enq Enqueuer, store jobstore.Store) *Service {
	return NewService(enq, store, "mediaforge:default", zap.NewNop())
}

func TestQueueProcessing(t *testing.T) {
	enq := &fakeEnqueuer{}
	store := jobstore.NewMemory()
	svc := newTestService(enq, store)
	ctx := context.Background()

	cfg := media.ImageConfig{TargetWidth: 800, Quality: 90, OutputFormat: "jpg"}
	result := svc.QueueProcessing(ctx, "/in/photo.png", "/out/photo.jpg", cfg, 0)

	require.True(t, result.IsSuccess())
	assert.NotEmpty(t, result.JobID)
	assert.Empty(t, result.OutputPath, "no artifact exists at enqueue time")
	assert.Equal(t, StatusQueued, result.Metadata["status"])
	assert.Equal(t, result.JobID, result.Metadata["job_id"])

	// The queued message carries the job id, paths and config.
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeProcessMedia, enq.tasks[0].Type())

	var payload Payload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	assert.Equal(t, result.JobID, payload.JobID)
	assert.Equal(t, "/in/photo.png", payload.InputPath)
	assert.Equal(t, "/out/photo.jpg", payload.OutputPath)

	decoded, err := media.UnmarshalConfig(payload.Config)
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)

	// The queued status is recorded immediately.
	status := svc.GetJobStatus(ctx, result.JobID)
	assert.Equal(t, StatusQueued, status["status"])
	assert.Equal(t, "/in/photo.png", status["input_path"])
}

func TestQueueProcessingWithDelay(t *testing.T) {
	enq := &fakeEnqueuer{}
	svc := newTestService(enq, jobstore.NewMemory())

	result := svc.QueueProcessing(context.Background(), "/in.mp4", "/out.mp4", media.DefaultVideoConfig(), 30*time.Second)
	require.True(t, result.IsSuccess())

	// Queue option plus the delay directive.
	require.Len(t, enq.opts, 1)
	assert.Len(t, enq.opts[0], 2)
}

func TestQueueProcessingEnqueueFailure(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("broker unavailable")}
	svc := newTestService(enq, jobstore.NewMemory())

	result := svc.QueueProcessing(context.Background(), "/in.png", "/out.jpg", media.GenericConfig{}, 0)

	require.False(t, result.IsSuccess())
	assert.NotEmpty(t, result.JobID, "job id is assigned even when enqueue fails")
	assert.Empty(t, result.OutputPath)
	assert.Contains(t, result.ErrorMessage, "broker unavailable")
	assert.Equal(t, "*errors.errorString", result.Metadata["error_type"])
}

func TestJobStatusLifecycle(t *testing.T) {
	svc := newTestService(&fakeEnqueuer{}, jobstore.NewMemory())
	ctx := context.Background()

	status := svc.GetJobStatus(ctx, "never-created")
	assert.Equal(t, StatusNotFound, status["status"])
	assert.Equal(t, "never-created", status["job_id"])

	require.NoError(t, svc.UpdateJobStatus(ctx, "job-1", map[string]interface{}{"status": StatusRunning}))
	status = svc.GetJobStatus(ctx, "job-1")
	assert.Equal(t, StatusRunning, status["status"])
	first, ok := status["updated_at"].(time.Time)
	require.True(t, ok)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.UpdateJobStatus(ctx, "job-1", map[string]interface{}{
		"status":   StatusRunning,
		"progress": 50,
	}))
	status = svc.GetJobStatus(ctx, "job-1")
	second, ok := status["updated_at"].(time.Time)
	require.True(t, ok)
	assert.True(t, second.After(first), "updated_at advances on every write")
	assert.Equal(t, 50, status["progress"])
}

func TestGetJobStatusUnreadableRecord(t *testing.T) {
	svc := newTestService(&fakeEnqueuer{}, failingStore{})

	status := svc.GetJobStatus(context.Background(), "job-1")
	assert.Equal(t, StatusUnknown, status["status"])
}

func TestCancelJob(t *testing.T) {
	svc := newTestService(&fakeEnqueuer{}, jobstore.NewMemory())
	ctx := context.Background()

	assert.True(t, svc.CancelJob(ctx, "job-1"))

	status := svc.GetJobStatus(ctx, "job-1")
	assert.Equal(t, StatusCancelled, status["status"])
	assert.NotEmpty(t, status["message"])
}

func TestCancelJobWriteFailure(t *testing.T) {
	svc := newTestService(&fakeEnqueuer{}, failingStore{})
	assert.False(t, svc.CancelJob(context.Background(), "job-1"))
}

func TestCleanupOldJobsZeroDaysRemovesEverything(t *testing.T) {
	svc := newTestService(&fakeEnqueuer{}, jobstore.NewMemory())
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, svc.UpdateJobStatus(ctx, id, map[string]interface{}{"status": StatusCompleted}))
	}
	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, 3, svc.CleanupOldJobs(ctx, 0))
	assert.Equal(t, 0, svc.CleanupOldJobs(ctx, 0))

	status := svc.GetJobStatus(ctx, "a")
	assert.Equal(t, StatusNotFound, status["status"])
}

func TestCleanupOldJobsKeepsRecentRecords(t *testing.T) {
	svc := newTestService(&fakeEnqueuer{}, jobstore.NewMemory())
	ctx := context.Background()

	require.NoError(t, svc.UpdateJobStatus(ctx, "fresh", map[string]interface{}{"status": StatusRunning}))
	assert.Equal(t, 0, svc.CleanupOldJobs(ctx, DefaultRetentionDays))

	status := svc.GetJobStatus(ctx, "fresh")
	assert.Equal(t, StatusRunning, status["status"])
}

func TestCleanupOldJobsStoreFailure(t *testing.T) {
	svc := newTestService(&fakeEnqueuer{}, failingStore{})
	assert.Equal(t, 0, svc.CleanupOldJobs(context.Background(), 0))
}
