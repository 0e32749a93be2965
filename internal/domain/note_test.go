package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewNote(t *testing.T) {
	t.Parallel() // Enable parallel execution
	userID := uuid.New()

	note, err := NewNote(userID, "cardiology", "Cardiac cycle", "Systole then diastole.", []string{"heart"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if note.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if note.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, note.UserID)
	}
	if note.CreatedAt.IsZero() || note.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	_, err = NewNote(userID, "", "title", "content", nil)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Expected ErrInvalidTopic, got %v", err)
	}

	_, err = NewNote(userID, "cardiology", "", "content", nil)
	if !errors.Is(err, ErrNoteTitleEmpty) {
		t.Errorf("Expected ErrNoteTitleEmpty, got %v", err)
	}

	_, err = NewNote(userID, "cardiology", "title", "  ", nil)
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}
}

func TestNoteUpdate(t *testing.T) {
	t.Parallel()
	note, err := NewNote(uuid.New(), "cardiology", "Cardiac cycle", "Systole then diastole.", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	created := note.UpdatedAt

	if err := note.Update("Cardiac cycle phases", "", []string{"heart", "physiology"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if note.Title != "Cardiac cycle phases" {
		t.Errorf("Expected updated title, got %s", note.Title)
	}
	if note.Content != "Systole then diastole." {
		t.Errorf("Expected content unchanged, got %s", note.Content)
	}
	if len(note.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", note.Tags)
	}
	if note.UpdatedAt.Before(created) {
		t.Error("Expected UpdatedAt to advance")
	}
}
