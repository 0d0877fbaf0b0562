// Package jobstore persists one status record per job id. The storage medium
// is an injected dependency: an in-memory store for tests, Redis or Postgres
// in deployments. Records are whole-value last-writer-wins; readers and the
// retention sweep do not coordinate with writers beyond that.
package jobstore

import (
	"context"
	"time"
)

// Store is the job status persistence contract.
type Store interface {
	// Get returns the record for a job id, or (nil, nil) when none exists.
	// A non-nil error means the record exists but cannot be read.
	Get(ctx context.Context, jobID string) (map[string]interface{}, error)
	// Put overwrites the record for a job id.
	Put(ctx context.Context, jobID string, record map[string]interface{}) error
	// DeleteOlderThan removes every record last written strictly before
	// cutoff and returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}
