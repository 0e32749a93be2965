package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// MemoryStudyStateStore is an in-memory implementation of store.StudyStateStore.
// States are deep-copied on the way in and out so tests can't accidentally
// share mutable state with the store.
type MemoryStudyStateStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]*domain.StudyState

	// SaveErr, when set, is returned by every Save call. Used to exercise
	// persistence failure paths.
	SaveErr error

	// SaveCount tracks how many times Save has been called.
	SaveCount int
}

// NewMemoryStudyStateStore creates an empty in-memory study state store.
func NewMemoryStudyStateStore() *MemoryStudyStateStore {
	return &MemoryStudyStateStore{
		states: make(map[uuid.UUID]*domain.StudyState),
	}
}

var _ store.StudyStateStore = (*MemoryStudyStateStore)(nil)

// Get implements store.StudyStateStore.Get
func (m *MemoryStudyStateStore) Get(ctx context.Context, userID uuid.UUID) (*domain.StudyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[userID]
	if !ok {
		return nil, store.ErrStudyStateNotFound
	}
	return state.Clone(), nil
}

// Save implements store.StudyStateStore.Save
func (m *MemoryStudyStateStore) Save(ctx context.Context, userID uuid.UUID, state *domain.StudyState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCount++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.states[userID] = state.Clone()
	return nil
}

// Delete implements store.StudyStateStore.Delete
func (m *MemoryStudyStateStore) Delete(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.states[userID]; !ok {
		return store.ErrStudyStateNotFound
	}
	delete(m.states, userID)
	return nil
}

// WithTx implements store.StudyStateStore.WithTx
// The in-memory store has no transactions; it returns itself.
func (m *MemoryStudyStateStore) WithTx(tx *sql.Tx) store.StudyStateStore {
	return m
}
