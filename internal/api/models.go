package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// StartSessionRequest defines the payload for starting a study session.
type StartSessionRequest struct {
	Topic string `json:"topic" validate:"required,min=1"`
}

// StartSessionResponse defines the successful response for session start.
type StartSessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`

	// Degraded is true when the session started but could not be persisted.
	// The in-memory state remains authoritative and a later write will
	// capture it.
	Degraded bool `json:"degraded,omitempty"`
}

// SessionResponse is the wire form of a closed or active study session.
type SessionResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Topic              string     `json:"topic"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	QuestionsAnswered  int        `json:"questions_answered"`
	CorrectAnswers     int        `json:"correct_answers"`
	FlashcardsReviewed int        `json:"flashcards_reviewed"`
	NotesCreated       int        `json:"notes_created"`
	DurationSeconds    int64      `json:"duration_seconds"`
	Degraded           bool       `json:"degraded,omitempty"`
}

// NewSessionResponse converts a domain session to its wire form.
func NewSessionResponse(s *domain.StudySession, degraded bool) SessionResponse {
	return SessionResponse{
		ID:                 s.ID,
		Topic:              s.Topic,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		QuestionsAnswered:  s.QuestionsAnswered,
		CorrectAnswers:     s.CorrectAnswers,
		FlashcardsReviewed: s.FlashcardsReviewed,
		NotesCreated:       s.NotesCreated,
		DurationSeconds:    s.DurationSeconds,
		Degraded:           degraded,
	}
}

// SubmitAnswerRequest defines the payload for recording a practice answer.
type SubmitAnswerRequest struct {
	Topic   string `json:"topic"   validate:"required,min=1"`
	Correct *bool  `json:"correct" validate:"required"`
}

// QuizScoreRequest defines the payload for recording a completed quiz.
type QuizScoreRequest struct {
	Topic string `json:"topic" validate:"required,min=1"`
	Score int    `json:"score" validate:"gte=0"`
	Total int    `json:"total" validate:"required,gte=1"`
}

// RecommendationsResponse lists the user's focus areas, weakest first.
type RecommendationsResponse struct {
	Topics []string `json:"topics"`
}

// CreateNoteRequest defines the payload for creating a note.
type CreateNoteRequest struct {
	Topic   string   `json:"topic"   validate:"required,min=1"`
	Title   string   `json:"title"   validate:"required,min=1,max=200"`
	Content string   `json:"content" validate:"required,min=1"`
	Tags    []string `json:"tags"    validate:"omitempty,dive,min=1,max=50"`
}

// UpdateNoteRequest defines the payload for updating a note.
type UpdateNoteRequest struct {
	Title   string   `json:"title"   validate:"required,min=1,max=200"`
	Content string   `json:"content" validate:"required,min=1"`
	Tags    []string `json:"tags"    validate:"omitempty,dive,min=1,max=50"`
}

// NoteListResponse is the paginated wire form of a note collection.
type NoteListResponse struct {
	Notes  []*domain.Note `json:"notes"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// CreateFlashcardRequest defines the payload for authoring a flashcard.
type CreateFlashcardRequest struct {
	Topic      string `json:"topic"      validate:"required,min=1"`
	Front      string `json:"front"      validate:"required,min=1"`
	Back       string `json:"back"       validate:"required,min=1"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// FlashcardListResponse is the paginated wire form of a flashcard collection.
type FlashcardListResponse struct {
	Flashcards []*domain.Flashcard `json:"flashcards"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

// ReviewFlashcardRequest defines the payload for recording a review outcome.
type ReviewFlashcardRequest struct {
	Correct *bool `json:"correct" validate:"required"`
}

// ReviewFlashcardResponse reports the card's next review schedule.
type ReviewFlashcardResponse struct {
	FlashcardID  uuid.UUID `json:"flashcard_id"`
	ReviewCount  int       `json:"review_count"`
	CorrectCount int       `json:"correct_count"`
	LastReviewed time.Time `json:"last_reviewed"`
	NextReview   time.Time `json:"next_review"`
	Degraded     bool      `json:"degraded,omitempty"`
}

// GenerateFlashcardsRequest defines the payload for generating flashcards
// from one of the user's notes.
type GenerateFlashcardsRequest struct {
	NoteID uuid.UUID `json:"note_id" validate:"required"`
}

// GenerateFlashcardsResponse returns the generated and saved cards.
type GenerateFlashcardsResponse struct {
	Flashcards []*domain.Flashcard `json:"flashcards"`
}
