package memory

import (
	"context"
	"sort"
	"sync"

	"strategy-validation-lab/internal/domain"
	"strategy-validation-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.ValidationRunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ValidationRun // keyed by run_id
}

// NewRunStore creates a new in-memory validation run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.ValidationRun),
	}
}

// Compile-time interface check.
var _ storage.ValidationRunStore = (*RunStore)(nil)

// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.ValidationRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *r
	s.data[r.RunID] = &cp
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.ValidationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// GetByInstrument retrieves all runs for an instrument, ordered by created_at ASC.
func (s *RunStore) GetByInstrument(_ context.Context, instrument string) ([]*domain.ValidationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ValidationRun
	for _, r := range s.data {
		if r.Instrument == instrument {
			cp := *r
			out = append(out, &cp)
		}
	}
	sortRuns(out)
	return out, nil
}

// GetAll retrieves every stored run, ordered by created_at ASC.
func (s *RunStore) GetAll(_ context.Context) ([]*domain.ValidationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ValidationRun, 0, len(s.data))
	for _, r := range s.data {
		cp := *r
		out = append(out, &cp)
	}
	sortRuns(out)
	return out, nil
}

func sortRuns(runs []*domain.ValidationRun) {
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt == runs[j].CreatedAt {
			return runs[i].RunID < runs[j].RunID
		}
		return runs[i].CreatedAt < runs[j].CreatedAt
	})
}
