package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// DueFlashcard pairs a flashcard with its current review schedule.
type DueFlashcard struct {
	Card  *domain.Flashcard  `json:"card"`
	State domain.ReviewState `json:"state"`
}

// CreateFlashcard authors a new flashcard for the user.
func (s *Service) CreateFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	topic, front, back string,
	difficulty domain.Difficulty,
) (*domain.Flashcard, error) {
	card, err := domain.NewFlashcard(userID, topic, front, back, difficulty)
	if err != nil {
		return nil, err
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetFlashcard retrieves one of the user's flashcards.
// Returns ErrNotOwned when the card belongs to someone else.
func (s *Service) GetFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Flashcard, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, ErrNotOwned
	}
	return card, nil
}

// ListFlashcards returns the user's flashcards, newest first.
func (s *Service) ListFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Flashcard, error) {
	return s.cardStore.FindByUser(ctx, userID, limit, offset)
}

// ListFlashcardsByTopic returns the user's flashcards for a topic, newest first.
func (s *Service) ListFlashcardsByTopic(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) ([]*domain.Flashcard, error) {
	return s.cardStore.FindByTopic(ctx, userID, topic)
}

// DeleteFlashcard removes one of the user's flashcards.
// Returns ErrNotOwned when the card belongs to someone else.
func (s *Service) DeleteFlashcard(ctx context.Context, userID, cardID uuid.UUID) error {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if card.UserID != userID {
		return ErrNotOwned
	}
	return s.cardStore.Delete(ctx, cardID)
}

// ReviewFlashcard records a review outcome for one of the user's flashcards
// and reschedules it. Ownership is checked before the engine is touched so a
// foreign card ID never perturbs review state.
// The returned state carries the next review time.
func (s *Service) ReviewFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	correct bool,
) (domain.ReviewState, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return domain.ReviewState{}, err
	}
	if card.UserID != userID {
		return domain.ReviewState{}, ErrNotOwned
	}

	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return domain.ReviewState{}, err
	}
	return eng.ReviewFlashcard(ctx, cardID, correct)
}

// DueFlashcards returns the user's flashcards that are due for review,
// paired with their schedules. Cards deleted since their last review are
// skipped; any other store failure aborts the listing.
func (s *Service) DueFlashcards(ctx context.Context, userID uuid.UUID) ([]DueFlashcard, error) {
	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	due := make([]DueFlashcard, 0)
	for _, cardID := range eng.DueFlashcardIDs() {
		card, err := s.cardStore.GetByID(ctx, cardID)
		if errors.Is(err, store.ErrFlashcardNotFound) {
			// Review state can outlive the card; not an error.
			log.Debug("skipping due entry without a card",
				slog.String("flashcard_id", cardID.String()))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load due flashcard %s: %w", cardID, err)
		}
		if card.UserID != userID {
			continue
		}
		state, ok := eng.ReviewState(cardID)
		if !ok {
			continue
		}
		due = append(due, DueFlashcard{Card: card, State: state})
	}
	return due, nil
}

// SaveGeneratedFlashcards persists a batch of generated cards for the user.
// Every card must carry the user's ID. The batch is written in a single
// transaction so a mid-batch failure leaves no partial set behind; without
// a db handle the store is written directly.
func (s *Service) SaveGeneratedFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	cards []*domain.Flashcard,
) error {
	for _, card := range cards {
		if card.UserID != userID {
			return fmt.Errorf("%w: generated card has mismatched owner", ErrNotOwned)
		}
	}

	if s.db == nil {
		return s.cardStore.CreateMany(ctx, cards)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.cardStore.WithTx(tx).CreateMany(ctx, cards)
	})
}
