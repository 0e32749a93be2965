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

// MemoryFlashcardStore is an in-memory implementation of store.FlashcardStore.
type MemoryFlashcardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Flashcard

	// CreateErr, when set, is returned by Create and CreateMany.
	CreateErr error

	// GetErr, when set, is returned by GetByID.
	GetErr error
}

// NewMemoryFlashcardStore creates an empty in-memory flashcard store.
func NewMemoryFlashcardStore() *MemoryFlashcardStore {
	return &MemoryFlashcardStore{
		cards: make(map[uuid.UUID]*domain.Flashcard),
	}
}

var _ store.FlashcardStore = (*MemoryFlashcardStore)(nil)

func copyCard(c *domain.Flashcard) *domain.Flashcard {
	dup := *c
	return &dup
}

// Create implements store.FlashcardStore.Create
func (m *MemoryFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if err := card.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[card.ID] = copyCard(card)
	return nil
}

// CreateMany implements store.FlashcardStore.CreateMany
func (m *MemoryFlashcardStore) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	for _, card := range cards {
		if err := card.Validate(); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, card := range cards {
		m.cards[card.ID] = copyCard(card)
	}
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
func (m *MemoryFlashcardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	card, ok := m.cards[id]
	if !ok {
		return nil, store.ErrFlashcardNotFound
	}
	return copyCard(card), nil
}

// FindByUser implements store.FlashcardStore.FindByUser
func (m *MemoryFlashcardStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*domain.Flashcard, 0)
	for _, card := range m.cards {
		if card.UserID == userID {
			matched = append(matched, copyCard(card))
		}
	}
	sortCardsNewestFirst(matched)

	if offset >= len(matched) {
		return []*domain.Flashcard{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// FindByTopic implements store.FlashcardStore.FindByTopic
func (m *MemoryFlashcardStore) FindByTopic(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) ([]*domain.Flashcard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*domain.Flashcard, 0)
	for _, card := range m.cards {
		if card.UserID == userID && card.Topic == topic {
			matched = append(matched, copyCard(card))
		}
	}
	sortCardsNewestFirst(matched)
	return matched, nil
}

// Update implements store.FlashcardStore.Update
func (m *MemoryFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	if err := card.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[card.ID]; !ok {
		return store.ErrFlashcardNotFound
	}
	m.cards[card.ID] = copyCard(card)
	return nil
}

// Delete implements store.FlashcardStore.Delete
func (m *MemoryFlashcardStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cards[id]; !ok {
		return store.ErrFlashcardNotFound
	}
	delete(m.cards, id)
	return nil
}

// WithTx implements store.FlashcardStore.WithTx
func (m *MemoryFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return m
}

func sortCardsNewestFirst(cards []*domain.Flashcard) {
	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.After(cards[j].CreatedAt)
		}
		return cards[i].ID.String() < cards[j].ID.String()
	})
}
