// internal/storage/memory.go
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jobsaddah/jobharvest/pkg/types"
)

// MemoryStore is an in-process Store used by tests and single-shot runs.
type MemoryStore struct {
	mu       sync.RWMutex
	postings map[string]types.StoredPosting
	seq      int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{postings: make(map[string]types.StoredPosting)}
}

func (s *MemoryStore) FindBySourcePath(ctx context.Context, path string) (*types.StoredPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, posting := range s.postings {
		if posting.Record.SourcePath == path {
			p := posting
			return &p, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindRecentCandidates(ctx context.Context, window time.Duration) ([]types.StoredPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-window)
	out := make([]types.StoredPosting, 0)
	for _, posting := range s.postings {
		if posting.UpdatedAt.After(cutoff) {
			out = append(out, posting)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, posting types.StoredPosting) (*types.StoredPosting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if posting.ID == "" {
		posting.ID = fmt.Sprintf("mem-%d", atomic.AddInt64(&s.seq, 1))
	}
	s.postings[posting.ID] = posting

	stored := posting
	return &stored, nil
}

// Len reports the number of stored postings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.postings)
}
