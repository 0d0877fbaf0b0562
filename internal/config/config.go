// Package config loads worker configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds worker configuration.
type Config struct {
	RedisURL          string
	PostgresURL       string // empty = use Redis for job status
	JobStore          string // "redis", "postgres" or "memory"
	QueueName         string
	WorkerConcurrency int
	JobRetentionDays  int
	CleanupInterval   time.Duration
}

// Load reads configuration from the environment, falling back to defaults
// suitable for local development.
func Load() Config {
	return Config{
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		PostgresURL:       getEnv("POSTGRES_URL", ""),
		JobStore:          getEnv("JOB_STORE", "redis"),
		QueueName:         getEnv("QUEUE_NAME", "mediaforge:default"),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 3),
		JobRetentionDays:  getEnvInt("JOB_RETENTION_DAYS", 7),
		CleanupInterval:   getEnvDuration("CLEANUP_INTERVAL", time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intValue int
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
