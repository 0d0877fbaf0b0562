package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "mediaforge:job:"
	redisIndexKey  = "mediaforge:jobs"
)

// Redis stores each record as a JSON value and keeps a sorted-set index of
// write times so the retention sweep can find old records without scanning.
type Redis struct {
	client *redis.Client
}

func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (s *Redis) Get(ctx context.Context, jobID string) (map[string]interface{}, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", jobID, err)
	}

	var record map[string]interface{}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt record for job %s: %w", jobID, err)
	}
	return record, nil
}

func (s *Redis) Put(ctx context.Context, jobID string, record map[string]interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record for job %s: %w", jobID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+jobID, data, 0)
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{
		Score:  float64(time.Now().UnixNano()),
		Member: jobID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write job %s: %w", jobID, err)
	}
	return nil
}

func (s *Redis) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	jobIDs, err := s.client.ZRangeByScore(ctx, redisIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", cutoff.UnixNano()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to scan job index: %w", err)
	}
	if len(jobIDs) == 0 {
		return 0, nil
	}

	keys := make([]string, len(jobIDs))
	members := make([]interface{}, len(jobIDs))
	for i, jobID := range jobIDs {
		keys[i] = redisKeyPrefix + jobID
		members[i] = jobID
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, redisIndexKey, members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	return len(jobIDs), nil
}

func (s *Redis) Close() error { return s.client.Close() }
