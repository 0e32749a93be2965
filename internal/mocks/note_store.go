package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// MemoryNoteStore is an in-memory implementation of store.NoteStore.
type MemoryNoteStore struct {
	mu    sync.Mutex
	notes map[uuid.UUID]*domain.Note

	// CreateErr, when set, is returned by every Create call.
	CreateErr error
}

// NewMemoryNoteStore creates an empty in-memory note store.
func NewMemoryNoteStore() *MemoryNoteStore {
	return &MemoryNoteStore{
		notes: make(map[uuid.UUID]*domain.Note),
	}
}

var _ store.NoteStore = (*MemoryNoteStore)(nil)

func copyNote(n *domain.Note) *domain.Note {
	dup := *n
	dup.Tags = append([]string(nil), n.Tags...)
	return &dup
}

// Create implements store.NoteStore.Create
func (m *MemoryNoteStore) Create(ctx context.Context, note *domain.Note) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := note.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.ID] = copyNote(note)
	return nil
}

// GetByID implements store.NoteStore.GetByID
func (m *MemoryNoteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	note, ok := m.notes[id]
	if !ok {
		return nil, store.ErrNoteNotFound
	}
	return copyNote(note), nil
}

// FindByUser implements store.NoteStore.FindByUser
func (m *MemoryNoteStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Note, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*domain.Note, 0)
	for _, note := range m.notes {
		if note.UserID == userID {
			matched = append(matched, copyNote(note))
		}
	}
	sortNotesNewestFirst(matched)
	return paginateNotes(matched, limit, offset), nil
}

// FindByTopic implements store.NoteStore.FindByTopic
func (m *MemoryNoteStore) FindByTopic(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*domain.Note, 0)
	for _, note := range m.notes {
		if note.UserID == userID && note.Topic == topic {
			matched = append(matched, copyNote(note))
		}
	}
	sortNotesNewestFirst(matched)
	return matched, nil
}

// Update implements store.NoteStore.Update
func (m *MemoryNoteStore) Update(ctx context.Context, note *domain.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[note.ID]; !ok {
		return store.ErrNoteNotFound
	}
	m.notes[note.ID] = copyNote(note)
	return nil
}

// Delete implements store.NoteStore.Delete
func (m *MemoryNoteStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[id]; !ok {
		return store.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

// WithTx implements store.NoteStore.WithTx
func (m *MemoryNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return m
}

func sortNotesNewestFirst(notes []*domain.Note) {
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		// Stable order for equal timestamps
		return notes[i].ID.String() < notes[j].ID.String()
	})
}

func paginateNotes(notes []*domain.Note, limit, offset int) []*domain.Note {
	if offset >= len(notes) {
		return []*domain.Note{}
	}
	end := offset + limit
	if end > len(notes) {
		end = len(notes)
	}
	return notes[offset:end]
}
