package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps reports in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*Report)}
}

func (s *MemoryStore) Save(_ context.Context, r *Report) error {
	ensureID(r)
	cp := *r
	cp.Body = slices.Clone(r.Body)

	s.mu.Lock()
	s.reports[r.ID] = &cp
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Report, error) {
	s.mu.RLock()
	r, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]*Report, error) {
	s.mu.RLock()
	var out []*Report
	for _, r := range s.reports {
		if opts.match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	s.mu.RUnlock()
	return newestFirst(out, opts.Limit), nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

func newestFirst(rs []*Report, limit int) []*Report {
	slices.SortFunc(rs, func(a, b *Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(rs) > limit {
		rs = rs[:limit]
	}
	return rs
}

var _ Store = (*MemoryStore)(nil)
