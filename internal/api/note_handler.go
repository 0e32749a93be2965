package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/atlasprep/atlasprep-api/internal/api/shared"
	"github.com/atlasprep/atlasprep-api/internal/engine"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/service/study"
)

// NoteHandler handles note CRUD API requests.
type NoteHandler struct {
	studyService *study.Service
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewNoteHandler creates a new NoteHandler with the given dependencies.
func NewNoteHandler(studyService *study.Service, log *slog.Logger) *NoteHandler {
	if log == nil {
		log = slog.Default()
	}
	return &NoteHandler{
		studyService: studyService,
		validator:    validator.New(),
		logger:       log.With(slog.String("component", "note_handler")),
	}
}

// CreateNote handles POST /notes. The note always persists; a failure to
// update the session counter afterwards degrades the response rather than
// failing it.
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	note, err := h.studyService.CreateNote(r.Context(), userID, req.Topic, req.Title, req.Content, req.Tags)
	if err != nil {
		if note != nil && engine.IsPersistenceError(err) {
			log := logger.FromContextOrDefault(r.Context(), h.logger)
			log.Warn("note created but session counter write failed",
				slog.String("note_id", note.ID.String()),
				slog.Any("error", err))
			shared.RespondWithJSON(w, r, http.StatusCreated, note)
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, note)
}

// GetNote handles GET /notes/{id}.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	note, err := h.studyService.GetNote(r.Context(), userID, noteID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, note)
}

// ListNotes handles GET /notes. An optional topic query parameter filters
// the list to a single topic.
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit, offset := getPagination(r)

	var err error
	resp := NoteListResponse{Limit: limit, Offset: offset}
	if topic := r.URL.Query().Get("topic"); topic != "" {
		resp.Notes, err = h.studyService.ListNotesByTopic(r.Context(), userID, topic)
	} else {
		resp.Notes, err = h.studyService.ListNotes(r.Context(), userID, limit, offset)
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// UpdateNote handles PUT /notes/{id}.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	note, err := h.studyService.UpdateNote(r.Context(), userID, noteID, req.Title, req.Content, req.Tags)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := handleUserIDAndPathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.studyService.DeleteNote(r.Context(), userID, noteID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
