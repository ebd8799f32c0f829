package repository

import (
	"context"
	"sync"

	"student-loan-sim/domain"
)

const DefaultRunHistorySize = 1000

// RunRepositoryMemory keeps the most recent runs in memory, evicting the
// oldest once capacity is reached.
type RunRepositoryMemory struct {
	mu       sync.RWMutex
	capacity int
	order    []string
	data     map[string]domain.RunRecord
}

// NewRunRepositoryMemory creates a new in-memory run repository.
func NewRunRepositoryMemory(capacity int) *RunRepositoryMemory {
	if capacity <= 0 {
		capacity = DefaultRunHistorySize
	}
	return &RunRepositoryMemory{
		capacity: capacity,
		data:     make(map[string]domain.RunRecord),
	}
}

// Save stores the run record in memory.
func (r *RunRepositoryMemory) Save(_ context.Context, record domain.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[record.ID]; !exists {
		r.order = append(r.order, record.ID)
	}
	r.data[record.ID] = record

	for len(r.order) > r.capacity {
		delete(r.data, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

func (r *RunRepositoryMemory) FindByID(_ context.Context, id string) (domain.RunRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.data[id]
	return record, ok, nil
}

func (r *RunRepositoryMemory) List(_ context.Context, limit int) ([]domain.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.order) {
		limit = len(r.order)
	}
	out := make([]domain.RunRecord, 0, limit)
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.data[r.order[i]])
	}
	return out, nil
}
