package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// PostgresNoteStore implements the store.NoteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNoteStore creates a new PostgreSQL implementation of the NoteStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresNoteStore(db store.DBTX, logger *slog.Logger) *PostgresNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "note_store")),
	}
}

// Ensure PostgresNoteStore implements store.NoteStore interface
var _ store.NoteStore = (*PostgresNoteStore)(nil)

// Create implements store.NoteStore.Create
// It saves a new note to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign key violation).
func (s *PostgresNoteStore) Create(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during create",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	query := `
		INSERT INTO notes (id, user_id, topic, title, content, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.UserID,
		note.Topic,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.CreatedAt,
		note.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during note creation",
				slog.String("error", err.Error()),
				slog.String("note_id", note.ID.String()),
				slog.String("user_id", note.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, note.UserID)
		}

		log.Error("failed to create note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()),
			slog.String("user_id", note.UserID.String()))
		return MapError(err)
	}

	log.Info("note created successfully",
		slog.String("note_id", note.ID.String()),
		slog.String("user_id", note.UserID.String()),
		slog.String("topic", note.Topic))
	return nil
}

// GetByID implements store.NoteStore.GetByID
// Returns store.ErrNoteNotFound if the note does not exist.
func (s *PostgresNoteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, topic, title, content, tags, created_at, updated_at
		FROM notes
		WHERE id = $1
	`

	var note domain.Note
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.UserID,
		&note.Topic,
		&note.Title,
		&note.Content,
		pq.Array(&note.Tags),
		&note.CreatedAt,
		&note.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found", slog.String("note_id", id.String()))
			return nil, store.ErrNoteNotFound
		}
		log.Error("failed to get note by ID",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return nil, MapError(err)
	}

	return &note, nil
}

// FindByUser implements store.NoteStore.FindByUser
// It retrieves the user's notes, newest first.
func (s *PostgresNoteStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, user_id, topic, title, content, tags, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to query notes by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return s.scanNotes(ctx, rows)
}

// FindByTopic implements store.NoteStore.FindByTopic
// It retrieves the user's notes for a topic, newest first.
func (s *PostgresNoteStore) FindByTopic(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) ([]*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, topic, title, content, tags, created_at, updated_at
		FROM notes
		WHERE user_id = $1 AND topic = $2
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, topic)
	if err != nil {
		log.Error("failed to query notes by topic",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("topic", topic))
		return nil, MapError(err)
	}

	return s.scanNotes(ctx, rows)
}

// scanNotes drains a note result set. It always closes rows.
func (s *PostgresNoteStore) scanNotes(ctx context.Context, rows *sql.Rows) ([]*domain.Note, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var notes []*domain.Note
	for rows.Next() {
		var note domain.Note
		err := rows.Scan(
			&note.ID,
			&note.UserID,
			&note.Topic,
			&note.Title,
			&note.Content,
			pq.Array(&note.Tags),
			&note.CreatedAt,
			&note.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan note row",
				slog.String("error", err.Error()))
			return nil, err
		}
		notes = append(notes, &note)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	// Return empty slice instead of nil if no notes found
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

// Update implements store.NoteStore.Update
// Returns store.ErrNoteNotFound if the note does not exist.
func (s *PostgresNoteStore) Update(ctx context.Context, note *domain.Note) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("note validation failed during update",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return err
	}

	query := `
		UPDATE notes
		SET topic = $1, title = $2, content = $3, tags = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		note.Topic,
		note.Title,
		note.Content,
		pq.Array(note.Tags),
		note.UpdatedAt,
		note.ID,
	)

	if err != nil {
		log.Error("failed to update note",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "note"); err != nil {
		log.Debug("note not found for update",
			slog.String("note_id", note.ID.String()))
		return store.ErrNoteNotFound
	}

	log.Info("note updated successfully",
		slog.String("note_id", note.ID.String()))
	return nil
}

// Delete implements store.NoteStore.Delete
// Returns store.ErrNoteNotFound if the note does not exist.
func (s *PostgresNoteStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM notes WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete note",
			slog.String("error", err.Error()),
			slog.String("note_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "note"); err != nil {
		log.Debug("note not found for delete",
			slog.String("note_id", id.String()))
		return store.ErrNoteNotFound
	}

	log.Info("note deleted successfully",
		slog.String("note_id", id.String()))
	return nil
}

// WithTx implements store.NoteStore.WithTx
func (s *PostgresNoteStore) WithTx(tx *sql.Tx) store.NoteStore {
	return &PostgresNoteStore{
		db:     tx,
		logger: s.logger,
	}
}
