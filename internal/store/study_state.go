package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// StudyStateStore defines the interface for persisting a user's aggregate
// study state. Each user owns exactly one state record; Save performs an
// upsert so callers never need to distinguish first-write from update.
type StudyStateStore interface {
	// Get retrieves the study state for the given user.
	// Returns ErrStudyStateNotFound if the user has never persisted state.
	Get(ctx context.Context, userID uuid.UUID) (*domain.StudyState, error)

	// Save persists the complete study state for the given user, replacing
	// any previously stored state. The state is written as a single record,
	// so a successful Save is all-or-nothing.
	Save(ctx context.Context, userID uuid.UUID, state *domain.StudyState) error

	// Delete removes the stored study state for the given user.
	// Returns ErrStudyStateNotFound if no state exists.
	Delete(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a new StudyStateStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) StudyStateStore
}
