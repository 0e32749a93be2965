package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flashcard-specific validation errors
var (
	// ErrFlashcardIDEmpty is returned when a flashcard ID is empty or nil.
	ErrFlashcardIDEmpty = errors.New("flashcard ID cannot be empty")

	// ErrFlashcardUserIDEmpty is returned when a flashcard's user ID is empty or nil.
	ErrFlashcardUserIDEmpty = errors.New("flashcard user ID cannot be empty")

	// ErrFlashcardFrontEmpty is returned when a flashcard's front side is empty.
	ErrFlashcardFrontEmpty = errors.New("flashcard front cannot be empty")

	// ErrFlashcardBackEmpty is returned when a flashcard's back side is empty.
	ErrFlashcardBackEmpty = errors.New("flashcard back cannot be empty")

	// ErrInvalidDifficulty is returned when a flashcard difficulty is not recognized.
	ErrInvalidDifficulty = errors.New("invalid flashcard difficulty")
)

// Difficulty is the author-assigned difficulty of a flashcard.
type Difficulty string

// Possible difficulty values.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Flashcard is the authored content of a reviewable item. The study engine
// treats the content fields as opaque; only the per-item ReviewState is
// mutated when a review outcome is recorded.
type Flashcard struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Topic      string     `json:"topic"`
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	Difficulty Difficulty `json:"difficulty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewFlashcard creates a new Flashcard with the given owner and content.
// It generates a new UUID for the card ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewFlashcard(userID uuid.UUID, topic, front, back string, difficulty Difficulty) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:         uuid.New(),
		UserID:     userID,
		Topic:      topic,
		Front:      front,
		Back:       back,
		Difficulty: difficulty,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrFlashcardUserIDEmpty
	}

	if strings.TrimSpace(c.Topic) == "" {
		return ErrInvalidTopic
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrFlashcardFrontEmpty
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrFlashcardBackEmpty
	}

	switch c.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return nil
	default:
		return ErrInvalidDifficulty
	}
}

// ReviewState tracks the spaced-repetition scheduling fields for a single
// flashcard. NextReview is always derived from the most recent outcome; an
// item is due when the current time has reached NextReview. Unseen items
// have a zero NextReview and are due immediately.
type ReviewState struct {
	ReviewCount  int       `json:"review_count"`
	CorrectCount int       `json:"correct_count"`
	LastReviewed time.Time `json:"last_reviewed,omitempty"`
	NextReview   time.Time `json:"next_review,omitempty"`
}
