package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/mediaforge/mediaforge/internal/config"
	"github.com/mediaforge/mediaforge/internal/engine"
	"github.com/mediaforge/mediaforge/internal/jobs"
	"github.com/mediaforge/mediaforge/internal/jobstore"
	"github.com/mediaforge/mediaforge/internal/orchestrator"
	"github.com/mediaforge/mediaforge/internal/queue"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	logger.Info("mediaforge worker starting",
		zap.String("job_store", cfg.JobStore),
		zap.Int("concurrency", cfg.WorkerConcurrency),
	)

	store, err := newJobStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize job store", zap.Error(err))
	}
	defer store.Close()

	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to parse Redis URL", zap.Error(err))
	}
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	jobService := jobs.NewService(client, store, cfg.QueueName, logger)

	avEngine, err := engine.NewFFmpegEngine(logger)
	if err != nil {
		logger.Fatal("failed to initialize ffmpeg engine", zap.Error(err))
	}
	orch := orchestrator.New(
		engine.NewImagingEngine(logger),
		avEngine,
		engine.NewSVGRasterizer(logger),
		jobService,
		logger,
	)

	consumer, err := queue.NewConsumer(&queue.ConsumerConfig{
		RedisURL:     cfg.RedisURL,
		Concurrency:  cfg.WorkerConcurrency,
		Orchestrator: orch,
		Jobs:         jobService,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to initialize queue consumer", zap.Error(err))
	}

	// Periodic retention sweep for old job records.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				jobService.CleanupOldJobs(sweepCtx, cfg.JobRetentionDays)
			}
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		if err := consumer.Start(); err != nil {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("worker ready, waiting for jobs")
	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
		stopSweep()
		consumer.Stop()
	case err := <-errChan:
		stopSweep()
		logger.Fatal("worker error", zap.Error(err))
	}

	logger.Info("worker stopped")
}

func newJobStore(cfg config.Config) (jobstore.Store, error) {
	switch cfg.JobStore {
	case "postgres":
		return jobstore.NewPostgres(cfg.PostgresURL)
	case "memory":
		return jobstore.NewMemory(), nil
	default:
		return jobstore.NewRedis(cfg.RedisURL)
	}
}
