package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// NoteStore defines the interface for study note persistence.
type NoteStore interface {
	// Create saves a new note to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Note if data is invalid.
	Create(ctx context.Context, note *domain.Note) error

	// GetByID retrieves a note by its unique ID.
	// Returns ErrNoteNotFound if the note does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error)

	// FindByUser retrieves notes belonging to the given user, newest first.
	// Returns an empty slice if the user has no notes.
	// Can limit the number of results and paginate through offset.
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Note, error)

	// FindByTopic retrieves the user's notes filed under the given topic,
	// newest first. Returns an empty slice if no notes match.
	FindByTopic(ctx context.Context, userID uuid.UUID, topic string) ([]*domain.Note, error)

	// Update saves changes to an existing note.
	// Returns ErrNoteNotFound if the note does not exist.
	// Returns validation errors if the note data is invalid.
	Update(ctx context.Context, note *domain.Note) error

	// Delete removes a note from the store by its ID.
	// Returns ErrNoteNotFound if the note does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new NoteStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) NoteStore
}
