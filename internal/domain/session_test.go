package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewStudySession(t *testing.T) {
	t.Parallel() // Enable parallel execution
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	session, err := NewStudySession("neuroanatomy", start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if session.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if session.Topic != "neuroanatomy" {
		t.Errorf("Expected topic neuroanatomy, got %s", session.Topic)
	}
	if !session.StartTime.Equal(start) {
		t.Errorf("Expected start time %v, got %v", start, session.StartTime)
	}
	if session.EndTime != nil {
		t.Error("Expected nil end time for a new session")
	}
	if !session.Active() {
		t.Error("Expected a new session to be active")
	}
	if session.QuestionsAnswered != 0 || session.CorrectAnswers != 0 ||
		session.FlashcardsReviewed != 0 || session.NotesCreated != 0 {
		t.Errorf("Expected zero counters, got %+v", session)
	}

	// Empty topic is rejected.
	_, err = NewStudySession("  ", start)
	if !errors.Is(err, ErrSessionTopicEmpty) {
		t.Errorf("Expected ErrSessionTopicEmpty, got %v", err)
	}
}

func TestSessionCounters(t *testing.T) {
	t.Parallel()
	start := time.Now().UTC()
	session, err := NewStudySession("cardiology", start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := session.RecordAnswer(true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := session.RecordAnswer(false); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := session.RecordFlashcardReview(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := session.RecordNoteCreated(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if session.QuestionsAnswered != 2 {
		t.Errorf("Expected 2 questions answered, got %d", session.QuestionsAnswered)
	}
	if session.CorrectAnswers != 1 {
		t.Errorf("Expected 1 correct answer, got %d", session.CorrectAnswers)
	}
	if session.FlashcardsReviewed != 1 {
		t.Errorf("Expected 1 flashcard reviewed, got %d", session.FlashcardsReviewed)
	}
	if session.NotesCreated != 1 {
		t.Errorf("Expected 1 note created, got %d", session.NotesCreated)
	}
}

func TestSessionClose(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	session, err := NewStudySession("cardiology", start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	end := start.Add(25 * time.Minute)
	if err := session.Close(end); err != nil {
		t.Fatalf("Unexpected error closing session: %v", err)
	}

	if session.Active() {
		t.Error("Expected session to be inactive after close")
	}
	if session.EndTime == nil || !session.EndTime.Equal(end) {
		t.Errorf("Expected end time %v, got %v", end, session.EndTime)
	}
	if session.DurationSeconds != 1500 {
		t.Errorf("Expected duration 1500s, got %d", session.DurationSeconds)
	}

	// Counters are frozen once closed.
	if err := session.RecordAnswer(true); !errors.Is(err, ErrSessionNotActive) {
		t.Errorf("Expected ErrSessionNotActive, got %v", err)
	}

	// The end time is set exactly once.
	if err := session.Close(end.Add(time.Minute)); !errors.Is(err, ErrSessionAlreadyClosed) {
		t.Errorf("Expected ErrSessionAlreadyClosed, got %v", err)
	}
}

func TestSessionCloseRejectsEndBeforeStart(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	session, err := NewStudySession("cardiology", start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	err = session.Close(start.Add(-time.Second))
	if !errors.Is(err, ErrSessionEndBeforeStart) {
		t.Errorf("Expected ErrSessionEndBeforeStart, got %v", err)
	}
	if !session.Active() {
		t.Error("Expected session to remain active after rejected close")
	}
}

func TestSessionClone(t *testing.T) {
	t.Parallel()
	start := time.Now().UTC()
	session, err := NewStudySession("embryology", start)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := session.Close(start.Add(time.Minute)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	clone := session.Clone()
	if clone == session {
		t.Fatal("Expected a distinct copy")
	}
	if clone.EndTime == session.EndTime {
		t.Error("Expected the end time pointer to be copied, not shared")
	}
	if !clone.EndTime.Equal(*session.EndTime) {
		t.Error("Expected equal end times")
	}
}
