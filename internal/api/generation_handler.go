package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/atlasprep/atlasprep-api/internal/api/shared"
	"github.com/atlasprep/atlasprep-api/internal/generation"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/service/study"
)

// GenerationHandler handles flashcard generation API requests. It reads one
// of the user's notes, asks the language model for cards and saves the
// resulting batch.
type GenerationHandler struct {
	studyService *study.Service
	generator    generation.Generator
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler with the given
// dependencies.
func NewGenerationHandler(
	studyService *study.Service,
	generator generation.Generator,
	log *slog.Logger,
) *GenerationHandler {
	if log == nil {
		log = slog.Default()
	}
	return &GenerationHandler{
		studyService: studyService,
		generator:    generator,
		validator:    validator.New(),
		logger:       log.With(slog.String("component", "generation_handler")),
	}
}

// GenerateFlashcards handles POST /flashcards/generate.
func (h *GenerationHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req GenerateFlashcardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	// Ownership is enforced by the note lookup.
	note, err := h.studyService.GetNote(r.Context(), userID, req.NoteID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)

	cards, err := h.generator.GenerateFlashcards(r.Context(), note.Content, userID, note.Topic)
	if err != nil {
		log.Error("flashcard generation failed",
			slog.String("note_id", note.ID.String()),
			slog.Any("error", err))
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.studyService.SaveGeneratedFlashcards(r.Context(), userID, cards); err != nil {
		log.Error("failed to save generated flashcards",
			slog.String("note_id", note.ID.String()),
			slog.Any("error", err))
		HandleAPIError(w, r, err, "Failed to save generated flashcards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, GenerateFlashcardsResponse{
		Flashcards: cards,
	})
}
