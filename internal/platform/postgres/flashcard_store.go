package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the FlashcardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

const flashcardInsertQuery = `
	INSERT INTO flashcards (id, user_id, topic, front, back, difficulty, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// Create implements store.FlashcardStore.Create
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign key violation).
func (s *PostgresFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during create",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(
		ctx,
		flashcardInsertQuery,
		card.ID,
		card.UserID,
		card.Topic,
		card.Front,
		card.Back,
		card.Difficulty,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			log.Warn("foreign key violation during flashcard creation",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()),
				slog.String("user_id", card.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, card.UserID)
		}

		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return MapError(err)
	}

	log.Info("flashcard created successfully",
		slog.String("flashcard_id", card.ID.String()),
		slog.String("topic", card.Topic))
	return nil
}

// CreateMany implements store.FlashcardStore.CreateMany
// It validates every card before writing anything, then inserts them one by
// one. Callers that need atomicity bind the store to a transaction first.
func (s *PostgresFlashcardStore) CreateMany(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("flashcard validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()))
			return err
		}
	}

	for _, card := range cards {
		_, err := s.db.ExecContext(
			ctx,
			flashcardInsertQuery,
			card.ID,
			card.UserID,
			card.Topic,
			card.Front,
			card.Back,
			card.Difficulty,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create flashcard in batch",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", card.ID.String()))
			return MapError(err)
		}
	}

	log.Info("flashcards created successfully",
		slog.Int("count", len(cards)))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
// Returns store.ErrFlashcardNotFound if the flashcard does not exist.
func (s *PostgresFlashcardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, topic, front, back, difficulty, created_at, updated_at
		FROM flashcards
		WHERE id = $1
	`

	var card domain.Flashcard
	var difficulty string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.UserID,
		&card.Topic,
		&card.Front,
		&card.Back,
		&difficulty,
		&card.CreatedAt,
		&card.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found", slog.String("flashcard_id", id.String()))
			return nil, store.ErrFlashcardNotFound
		}
		log.Error("failed to get flashcard by ID",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return nil, MapError(err)
	}

	card.Difficulty = domain.Difficulty(difficulty)
	return &card, nil
}

// FindByUser implements store.FlashcardStore.FindByUser
func (s *PostgresFlashcardStore) FindByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, user_id, topic, front, back, difficulty, created_at, updated_at
		FROM flashcards
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to query flashcards by user",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return s.scanFlashcards(ctx, rows)
}

// FindByTopic implements store.FlashcardStore.FindByTopic
func (s *PostgresFlashcardStore) FindByTopic(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, topic, front, back, difficulty, created_at, updated_at
		FROM flashcards
		WHERE user_id = $1 AND topic = $2
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, topic)
	if err != nil {
		log.Error("failed to query flashcards by topic",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("topic", topic))
		return nil, MapError(err)
	}

	return s.scanFlashcards(ctx, rows)
}

// scanFlashcards drains a flashcard result set. It always closes rows.
func (s *PostgresFlashcardStore) scanFlashcards(
	ctx context.Context,
	rows *sql.Rows,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var cards []*domain.Flashcard
	for rows.Next() {
		var card domain.Flashcard
		var difficulty string
		err := rows.Scan(
			&card.ID,
			&card.UserID,
			&card.Topic,
			&card.Front,
			&card.Back,
			&difficulty,
			&card.CreatedAt,
			&card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan flashcard row",
				slog.String("error", err.Error()))
			return nil, err
		}
		card.Difficulty = domain.Difficulty(difficulty)
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	if cards == nil {
		cards = []*domain.Flashcard{}
	}
	return cards, nil
}

// Update implements store.FlashcardStore.Update
// Returns store.ErrFlashcardNotFound if the flashcard does not exist.
func (s *PostgresFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during update",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE flashcards
		SET topic = $1, front = $2, back = $3, difficulty = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Topic,
		card.Front,
		card.Back,
		card.Difficulty,
		card.UpdatedAt,
		card.ID,
	)

	if err != nil {
		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "flashcard"); err != nil {
		log.Debug("flashcard not found for update",
			slog.String("flashcard_id", card.ID.String()))
		return store.ErrFlashcardNotFound
	}

	log.Info("flashcard updated successfully",
		slog.String("flashcard_id", card.ID.String()))
	return nil
}

// Delete implements store.FlashcardStore.Delete
// Returns store.ErrFlashcardNotFound if the flashcard does not exist.
func (s *PostgresFlashcardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM flashcards WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "flashcard"); err != nil {
		log.Debug("flashcard not found for delete",
			slog.String("flashcard_id", id.String()))
		return store.ErrFlashcardNotFound
	}

	log.Info("flashcard deleted successfully",
		slog.String("flashcard_id", id.String()))
	return nil
}

// WithTx implements store.FlashcardStore.WithTx
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}
