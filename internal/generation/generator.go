package generation

import (
	"context"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// Generator defines the interface for generating flashcards from text.
// This interface serves as a boundary between the application core and
// external AI/LLM services.
type Generator interface {
	// GenerateFlashcards creates flashcards from the given note text.
	// The cards are owned by userID and filed under topic.
	// Returns an error from errors.go if generation fails; ErrContentBlocked
	// and ErrInvalidResponse are permanent, ErrTransientFailure may succeed
	// on retry.
	GenerateFlashcards(
		ctx context.Context,
		noteText string,
		userID uuid.UUID,
		topic string,
	) ([]*domain.Flashcard, error)
}
