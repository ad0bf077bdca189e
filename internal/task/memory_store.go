package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory. Tasks do not survive a
// restart, so it suits local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
	now     func() time.Time
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]*Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SaveTask stores a copy of record.
func (s *MemoryStore) SaveTask(_ context.Context, record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("task %s already exists", record.ID)
	}
	cp := *record
	s.records[record.ID] = &cp
	return nil
}

// UpdateTaskStatus updates a stored record. Unknown IDs are a no-op, as in
// the postgres store.
func (s *MemoryStore) UpdateTaskStatus(
	_ context.Context,
	taskID uuid.UUID,
	status Status,
	result []byte,
	errorMsg string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[taskID]
	if !ok {
		return nil
	}
	record.Status = status
	record.Result = result
	record.Error = errorMsg
	record.UpdatedAt = s.now()
	return nil
}

// GetTask returns a copy of the stored record.
func (s *MemoryStore) GetTask(_ context.Context, taskID uuid.UUID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	cp := *record
	return &cp, nil
}

// GetPendingTasks returns pending records, oldest first.
func (s *MemoryStore) GetPendingTasks(_ context.Context) ([]*Record, error) {
	return s.byStatus(StatusPending, 0), nil
}

// GetProcessingTasks returns processing records not updated within olderThan.
func (s *MemoryStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]*Record, error) {
	return s.byStatus(StatusProcessing, olderThan), nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) byStatus(status Status, olderThan time.Duration) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := s.now().Add(-olderThan)
	var out []*Record
	for _, record := range s.records {
		if record.Status != status {
			continue
		}
		if olderThan > 0 && !record.UpdatedAt.Before(cutoff) {
			continue
		}
		cp := *record
		out = append(out, &cp)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
