package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note-specific validation errors
var (
	// ErrNoteIDEmpty is returned when a note ID is empty or nil.
	ErrNoteIDEmpty = errors.New("note ID cannot be empty")

	// ErrNoteUserIDEmpty is returned when a note's user ID is empty or nil.
	ErrNoteUserIDEmpty = errors.New("note user ID cannot be empty")

	// ErrNoteTitleEmpty is returned when a note's title is empty.
	ErrNoteTitleEmpty = errors.New("note title cannot be empty")
)

// Note is a free-form study note attached to a topic. Notes are authored
// content; the engine only counts note creation against the active session.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Topic     string    `json:"topic"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNote creates a new Note with the given owner and fields.
// It generates a new UUID for the note ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewNote(userID uuid.UUID, topic, title, content string, tags []string) (*Note, error) {
	now := time.Now().UTC()
	note := &Note{
		ID:        uuid.New(),
		UserID:    userID,
		Topic:     topic,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := note.Validate(); err != nil {
		return nil, err
	}

	return note, nil
}

// Validate checks if the Note has valid data.
// Returns an error if any field fails validation.
func (n *Note) Validate() error {
	if n.ID == uuid.Nil {
		return ErrNoteIDEmpty
	}

	if n.UserID == uuid.Nil {
		return ErrNoteUserIDEmpty
	}

	if strings.TrimSpace(n.Topic) == "" {
		return ErrInvalidTopic
	}

	if strings.TrimSpace(n.Title) == "" {
		return ErrNoteTitleEmpty
	}

	if strings.TrimSpace(n.Content) == "" {
		return ErrEmptyContent
	}

	return nil
}

// Update applies new field values to the note and bumps the updated
// timestamp. Empty title or content is rejected; nil tags leaves the
// existing tags unchanged.
func (n *Note) Update(title, content string, tags []string) error {
	orig := *n

	if title != "" {
		n.Title = title
	}
	if content != "" {
		n.Content = content
	}
	if tags != nil {
		n.Tags = tags
	}

	if err := n.Validate(); err != nil {
		*n = orig
		return err
	}

	n.UpdatedAt = time.Now().UTC()
	return nil
}
