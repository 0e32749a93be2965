package study

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/engine"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
)

// CreateNote stores a new study note for the user. When the user has an
// active session the note also bumps the session's notes counter; outside a
// session the note is still stored, it just isn't attributed to one.
func (s *Service) CreateNote(
	ctx context.Context,
	userID uuid.UUID,
	topic, title, content string,
	tags []string,
) (*domain.Note, error) {
	note, err := domain.NewNote(userID, topic, title, content, tags)
	if err != nil {
		return nil, err
	}

	if err := s.noteStore.Create(ctx, note); err != nil {
		return nil, err
	}

	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := eng.RecordNoteCreated(ctx); err != nil && !errors.Is(err, engine.ErrNoActiveSession) {
		// The note exists either way; surface persistence trouble to the
		// caller but don't undo the write.
		log := logger.FromContextOrDefault(ctx, s.logger)
		log.Warn("note stored but session counter update failed",
			slog.String("error", err.Error()),
			slog.String("note_id", note.ID.String()))
		return note, err
	}

	return note, nil
}

// GetNote retrieves one of the user's notes.
// Returns ErrNotOwned when the note belongs to someone else.
func (s *Service) GetNote(ctx context.Context, userID, noteID uuid.UUID) (*domain.Note, error) {
	note, err := s.noteStore.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, ErrNotOwned
	}
	return note, nil
}

// ListNotes returns the user's notes, newest first.
func (s *Service) ListNotes(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Note, error) {
	return s.noteStore.FindByUser(ctx, userID, limit, offset)
}

// ListNotesByTopic returns the user's notes for a topic, newest first.
func (s *Service) ListNotesByTopic(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
) ([]*domain.Note, error) {
	return s.noteStore.FindByTopic(ctx, userID, topic)
}

// UpdateNote applies edits to one of the user's notes.
// Returns ErrNotOwned when the note belongs to someone else.
func (s *Service) UpdateNote(
	ctx context.Context,
	userID, noteID uuid.UUID,
	title, content string,
	tags []string,
) (*domain.Note, error) {
	note, err := s.noteStore.GetByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, ErrNotOwned
	}

	if err := note.Update(title, content, tags); err != nil {
		return nil, err
	}
	if err := s.noteStore.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes one of the user's notes.
// Returns ErrNotOwned when the note belongs to someone else.
func (s *Service) DeleteNote(ctx context.Context, userID, noteID uuid.UUID) error {
	note, err := s.noteStore.GetByID(ctx, noteID)
	if err != nil {
		return err
	}
	if note.UserID != userID {
		return ErrNotOwned
	}
	return s.noteStore.Delete(ctx, noteID)
}
