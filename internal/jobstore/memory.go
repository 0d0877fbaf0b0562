package jobstore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record    map[string]interface{}
	writtenAt time.Time
}

// Memory is an in-process Store used by tests and single-node setups.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, jobID string) (map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[jobID]
	if !ok {
		return nil, nil
	}
	return copyRecord(entry.record), nil
}

func (m *Memory) Put(ctx context.Context, jobID string, record map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[jobID] = memoryEntry{
		record:    copyRecord(record),
		writtenAt: m.now(),
	}
	return nil
}

func (m *Memory) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for jobID, entry := range m.entries {
		if entry.writtenAt.Before(cutoff) {
			delete(m.entries, jobID)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory) Close() error { return nil }

// copyRecord guards against callers mutating a stored or returned map.
func copyRecord(record map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
