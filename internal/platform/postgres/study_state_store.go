package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// PostgresStudyStateStore implements the store.StudyStateStore interface.
// Each user's aggregate study state is stored as a single JSONB document,
// so reads and writes are one-row operations and a write always replaces
// the whole state.
type PostgresStudyStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudyStateStore creates a new PostgreSQL implementation of the
// StudyStateStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresStudyStateStore(db store.DBTX, logger *slog.Logger) *PostgresStudyStateStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudyStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_state_store")),
	}
}

// Ensure PostgresStudyStateStore implements store.StudyStateStore interface
var _ store.StudyStateStore = (*PostgresStudyStateStore)(nil)

// Get implements store.StudyStateStore.Get
// Returns store.ErrStudyStateNotFound if the user has no persisted state.
func (s *PostgresStudyStateStore) Get(ctx context.Context, userID uuid.UUID) (*domain.StudyState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT state
		FROM study_states
		WHERE user_id = $1
	`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("study state not found",
				slog.String("user_id", userID.String()))
			return nil, store.ErrStudyStateNotFound
		}
		log.Error("failed to get study state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	var state domain.StudyState
	if err := json.Unmarshal(raw, &state); err != nil {
		log.Error("failed to decode study state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("%w: decoding study state: %v", store.ErrInternal, err)
	}

	// Backfill zero-value fields so callers never see nil maps or slices.
	state.Normalize()

	return &state, nil
}

// Save implements store.StudyStateStore.Save
// It upserts the user's state document in one statement.
func (s *PostgresStudyStateStore) Save(ctx context.Context, userID uuid.UUID, state *domain.StudyState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	raw, err := json.Marshal(state)
	if err != nil {
		log.Error("failed to encode study state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return fmt.Errorf("%w: encoding study state: %v", store.ErrInternal, err)
	}

	query := `
		INSERT INTO study_states (user_id, state, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query, userID, raw, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during study state save",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, userID)
		}

		log.Error("failed to save study state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	log.Debug("study state saved",
		slog.String("user_id", userID.String()))
	return nil
}

// Delete implements store.StudyStateStore.Delete
// Returns store.ErrStudyStateNotFound if no state exists for the user.
func (s *PostgresStudyStateStore) Delete(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM study_states WHERE user_id = $1`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to delete study state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "study state"); err != nil {
		log.Debug("study state not found for delete",
			slog.String("user_id", userID.String()))
		return store.ErrStudyStateNotFound
	}

	log.Info("study state deleted",
		slog.String("user_id", userID.String()))
	return nil
}

// WithTx implements store.StudyStateStore.WithTx
func (s *PostgresStudyStateStore) WithTx(tx *sql.Tx) store.StudyStateStore {
	return &PostgresStudyStateStore{
		db:     tx,
		logger: s.logger,
	}
}
