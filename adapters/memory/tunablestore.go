// Package memory provides in-memory store implementations, used by tests
// and by the in-memory database mode.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pelagos/shoal/domain/tunable"
)

// TunableStore is an in-memory implementation of tunable.Store.
type TunableStore struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]tunable.Tunable
	byVar  map[string]int64
}

// NewTunableStore creates a new in-memory tunable store.
func NewTunableStore() *TunableStore {
	return &TunableStore{
		nextID: 1,
		items:  make(map[int64]tunable.Tunable),
		byVar:  make(map[string]int64),
	}
}

// List returns all tunables ordered by id.
func (s *TunableStore) List(ctx context.Context) ([]tunable.Tunable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]tunable.Tunable, 0, len(s.items))
	for _, t := range s.items {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

// Get retrieves a tunable by id.
func (s *TunableStore) Get(ctx context.Context, id int64) (tunable.Tunable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.items[id]
	if !ok {
		return tunable.Tunable{}, tunable.ErrNotFound
	}
	return t, nil
}

// GetByVar retrieves a tunable by its variable name.
func (s *TunableStore) GetByVar(ctx context.Context, name string) (tunable.Tunable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byVar[name]
	if !ok {
		return tunable.Tunable{}, tunable.ErrNotFound
	}
	return s.items[id], nil
}

// Create stores a new tunable and returns its id.
func (s *TunableStore) Create(ctx context.Context, t tunable.Tunable) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextID
	s.nextID++
	s.items[t.ID] = t
	s.byVar[t.Var] = t.ID
	return t.ID, nil
}

// Update modifies an existing tunable.
func (s *TunableStore) Update(ctx context.Context, t tunable.Tunable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[t.ID]
	if !ok {
		return tunable.ErrNotFound
	}
	if old.Var != t.Var {
		delete(s.byVar, old.Var)
		s.byVar[t.Var] = t.ID
	}
	s.items[t.ID] = t
	return nil
}

// Delete removes a tunable by id.
func (s *TunableStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.items[id]
	if !ok {
		return tunable.ErrNotFound
	}
	delete(s.byVar, t.Var)
	delete(s.items, id)
	return nil
}

// Ensure interface compliance.
var _ tunable.Store = (*TunableStore)(nil)
