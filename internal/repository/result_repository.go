package repository

import (
	"sync"

	"go-screenshot-optimizer/internal/optimizer"
)

// ResultRepository stores recent optimization results so the control API
// can show the desktop UI what happened without re-running anything
type ResultRepository interface {
	// Save appends a result, evicting the oldest entry when full
	Save(result optimizer.Result)

	// Recent returns up to limit results, newest first. A non-positive
	// limit returns everything retained.
	Recent(limit int) []optimizer.Result

	// Stats aggregates all retained results
	Stats() optimizer.Stats
}

// memoryResultRepository implements ResultRepository with a bounded
// in-memory ring
type memoryResultRepository struct {
	mu       sync.RWMutex
	results  []optimizer.Result
	capacity int
}

// NewMemoryResultRepository creates a repository retaining up to capacity
// results
func NewMemoryResultRepository(capacity int) ResultRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &memoryResultRepository{
		results:  make([]optimizer.Result, 0, capacity),
		capacity: capacity,
	}
}

// Save appends a result, evicting the oldest entry when full
func (r *memoryResultRepository) Save(result optimizer.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.results) == r.capacity {
		copy(r.results, r.results[1:])
		r.results = r.results[:len(r.results)-1]
	}
	r.results = append(r.results, result)
}

// Recent returns up to limit results, newest first
func (r *memoryResultRepository) Recent(limit int) []optimizer.Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := len(r.results)
	if limit > 0 && limit < count {
		count = limit
	}

	out := make([]optimizer.Result, count)
	for i := 0; i < count; i++ {
		out[i] = r.results[len(r.results)-1-i]
	}
	return out
}

// Stats aggregates all retained results
func (r *memoryResultRepository) Stats() optimizer.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return optimizer.Summarize(r.results)
}
