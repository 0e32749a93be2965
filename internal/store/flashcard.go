package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// FlashcardStore defines the interface for flashcard persistence.
type FlashcardStore interface {
	// Create saves a new flashcard to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Flashcard if data is invalid.
	Create(ctx context.Context, card *domain.Flashcard) error

	// CreateMany saves a batch of flashcards in a single operation.
	// All cards must belong to the same user. The operation is atomic when
	// the store is bound to a transaction via WithTx.
	CreateMany(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a flashcard by its unique ID.
	// Returns ErrFlashcardNotFound if the flashcard does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// FindByUser retrieves flashcards belonging to the given user, newest first.
	// Returns an empty slice if the user has none.
	// Can limit the number of results and paginate through offset.
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Flashcard, error)

	// FindByTopic retrieves the user's flashcards filed under the given topic,
	// newest first. Returns an empty slice if no flashcards match.
	FindByTopic(ctx context.Context, userID uuid.UUID, topic string) ([]*domain.Flashcard, error)

	// Update saves changes to an existing flashcard.
	// Returns ErrFlashcardNotFound if the flashcard does not exist.
	// Returns validation errors if the flashcard data is invalid.
	Update(ctx context.Context, card *domain.Flashcard) error

	// Delete removes a flashcard from the store by its ID.
	// Returns ErrFlashcardNotFound if the flashcard does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new FlashcardStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) FlashcardStore
}
