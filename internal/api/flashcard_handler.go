package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/atlasprep/atlasprep-api/internal/api/shared"
	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/engine"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/service/study"
)

// FlashcardHandler handles flashcard authoring and review API requests.
type FlashcardHandler struct {
	studyService *study.Service
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler with the given dependencies.
func NewFlashcardHandler(studyService *study.Service, log *slog.Logger) *FlashcardHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FlashcardHandler{
		studyService: studyService,
		validator:    validator.New(),
		logger:       log.With(slog.String("component", "flashcard_handler")),
	}
}

// CreateFlashcard handles POST /flashcards. A missing difficulty defaults
// to medium.
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	difficulty := domain.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	card, err := h.studyService.CreateFlashcard(
		r.Context(), userID, req.Topic, req.Front, req.Back, difficulty)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// GetFlashcard handles GET /flashcards/{id}.
func (h *FlashcardHandler) GetFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	card, err := h.studyService.GetFlashcard(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// ListFlashcards handles GET /flashcards. An optional topic query parameter
// filters the list to a single topic.
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := getPagination(r)

	var err error
	resp := FlashcardListResponse{Limit: limit, Offset: offset}
	if topic := r.URL.Query().Get("topic"); topic != "" {
		resp.Flashcards, err = h.studyService.ListFlashcardsByTopic(r.Context(), userID, topic)
	} else {
		resp.Flashcards, err = h.studyService.ListFlashcards(r.Context(), userID, limit, offset)
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// DeleteFlashcard handles DELETE /flashcards/{id}.
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.studyService.DeleteFlashcard(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReviewFlashcard handles POST /flashcards/{id}/review. The review always
// reschedules the card; a failed state write degrades the response rather
// than failing it.
func (h *FlashcardHandler) ReviewFlashcard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req ReviewFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	state, err := h.studyService.ReviewFlashcard(r.Context(), userID, cardID, *req.Correct)
	if err != nil && !engine.IsPersistenceError(err) {
		HandleAPIError(w, r, err, "")
		return
	}
	if engine.IsPersistenceError(err) {
		log := logger.FromContextOrDefault(r.Context(), h.logger)
		log.Warn("review recorded but state write failed",
			slog.String("flashcard_id", cardID.String()),
			slog.Any("error", err))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewFlashcardResponse{
		FlashcardID:  cardID,
		ReviewCount:  state.ReviewCount,
		CorrectCount: state.CorrectCount,
		LastReviewed: state.LastReviewed,
		NextReview:   state.NextReview,
		Degraded:     engine.IsPersistenceError(err),
	})
}

// GetDueFlashcards handles GET /flashcards/due.
func (h *FlashcardHandler) GetDueFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	due, err := h.studyService.DueFlashcards(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, due)
}
