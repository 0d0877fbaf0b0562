package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const createJobsTable = `
CREATE TABLE IF NOT EXISTS processing_jobs (
	job_id     TEXT PRIMARY KEY,
	record     JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// Postgres keeps records in a single jobs table, for deployments that already
// run Postgres and do not want a second store for job status.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}
	if _, err := db.Exec(createJobsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create jobs table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (s *Postgres) Get(ctx context.Context, jobID string) (map[string]interface{}, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT record FROM processing_jobs WHERE job_id = $1", jobID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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

func (s *Postgres) Put(ctx context.Context, jobID string, record map[string]interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record for job %s: %w", jobID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO processing_jobs (job_id, record, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (job_id) DO UPDATE
		SET record = EXCLUDED.record, updated_at = NOW()`,
		jobID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to write job %s: %w", jobID, err)
	}
	return nil
}

func (s *Postgres) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM processing_jobs WHERE updated_at < $1", cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (s *Postgres) Close() error { return s.db.Close() }
