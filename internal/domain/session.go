package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors
var (
	// ErrSessionIDEmpty is returned when a session ID is empty or nil.
	ErrSessionIDEmpty = errors.New("session ID cannot be empty")

	// ErrSessionTopicEmpty is returned when a session's topic is empty.
	ErrSessionTopicEmpty = errors.New("session topic cannot be empty")

	// ErrSessionEndBeforeStart is returned when a session's end time
	// precedes its start time.
	ErrSessionEndBeforeStart = errors.New("session end time cannot precede start time")
)

// StudySession represents one bounded interval of study activity with its
// own counters. A session is created open, mutated only while active, and
// closed exactly once; closed sessions are appended to the immutable
// session history and never deleted.
type StudySession struct {
	ID                 uuid.UUID  `json:"id"`
	Topic              string     `json:"topic"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	QuestionsAnswered  int        `json:"questions_answered"`
	CorrectAnswers     int        `json:"correct_answers"`
	FlashcardsReviewed int        `json:"flashcards_reviewed"`
	NotesCreated       int        `json:"notes_created"`
	DurationSeconds    int64      `json:"duration_seconds"`
}

// NewStudySession creates an open StudySession for the given topic.
// It generates a new UUID for the session ID, sets the start time and zeroes
// all counters. Returns an error if validation fails.
func NewStudySession(topic string, startTime time.Time) (*StudySession, error) {
	session := &StudySession{
		ID:        uuid.New(),
		Topic:     topic,
		StartTime: startTime,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the StudySession has valid data.
// Returns an error if any field fails validation.
func (s *StudySession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if strings.TrimSpace(s.Topic) == "" {
		return ErrSessionTopicEmpty
	}

	if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
		return ErrSessionEndBeforeStart
	}

	return nil
}

// Active reports whether the session is still open.
func (s *StudySession) Active() bool {
	return s.EndTime == nil
}

// RecordAnswer increments the answered-questions counter, and the correct
// counter when the outcome was correct. Returns ErrSessionNotActive if the
// session has already been closed.
func (s *StudySession) RecordAnswer(correct bool) error {
	if !s.Active() {
		return ErrSessionNotActive
	}

	s.QuestionsAnswered++
	if correct {
		s.CorrectAnswers++
	}
	return nil
}

// RecordFlashcardReview increments the flashcards-reviewed counter.
// Returns ErrSessionNotActive if the session has already been closed.
func (s *StudySession) RecordFlashcardReview() error {
	if !s.Active() {
		return ErrSessionNotActive
	}

	s.FlashcardsReviewed++
	return nil
}

// RecordNoteCreated increments the notes-created counter.
// Returns ErrSessionNotActive if the session has already been closed.
func (s *StudySession) RecordNoteCreated() error {
	if !s.Active() {
		return ErrSessionNotActive
	}

	s.NotesCreated++
	return nil
}

// Close sets the session end time and computes the session duration in
// seconds. The end time is set exactly once; closing a closed session
// returns ErrSessionAlreadyClosed. An end time earlier than the start time
// is rejected so the duration is always non-negative.
func (s *StudySession) Close(endTime time.Time) error {
	if !s.Active() {
		return ErrSessionAlreadyClosed
	}

	if endTime.Before(s.StartTime) {
		return ErrSessionEndBeforeStart
	}

	end := endTime
	s.EndTime = &end
	s.DurationSeconds = int64(endTime.Sub(s.StartTime).Seconds())
	return nil
}

// Clone returns a deep copy of the session.
func (s *StudySession) Clone() *StudySession {
	clone := *s
	if s.EndTime != nil {
		end := *s.EndTime
		clone.EndTime = &end
	}
	return &clone
}
