package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/abacus/pkg/domain"
)

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []domain.Evaluation
	index   map[string]int
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		index: make(map[string]int),
	}
}

// Append records a copy of the evaluation.
func (s *Store) Append(ctx context.Context, e *domain.Evaluation) error {
	if e.ID == "" {
		return domain.ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[e.ID]; ok {
		s.entries[i] = *e
		return nil
	}
	s.index[e.ID] = len(s.entries)
	s.entries = append(s.entries, *e)
	return nil
}

// Get returns a copy so callers can't mutate the history through the pointer.
func (s *Store) Get(ctx context.Context, id string) (*domain.Evaluation, error) {
	if id == "" {
		return nil, domain.ErrEmptyID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrEvaluationNotFound
	}
	e := s.entries[i]
	return &e, nil
}

// List returns evaluations newest first, see domain.NewestFirst.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Evaluation, error) {
	s.mu.RLock()
	out := slices.Clone(s.entries)
	s.mu.RUnlock()

	slices.SortFunc(out, domain.NewestFirst)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Clear drops every evaluation.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	clear(s.index)
	return nil
}

// Len returns the number of stored evaluations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
