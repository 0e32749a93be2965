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

// StudyHandler handles study session, progress and quiz API requests.
type StudyHandler struct {
	studyService *study.Service
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewStudyHandler creates a new StudyHandler with the given dependencies.
func NewStudyHandler(studyService *study.Service, log *slog.Logger) *StudyHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StudyHandler{
		studyService: studyService,
		validator:    validator.New(),
		logger:       log.With(slog.String("component", "study_handler")),
	}
}

// StartSession handles POST /sessions. A persistence failure after the
// session started is reported as a degraded success rather than an error.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sessionID, err := h.studyService.StartSession(r.Context(), userID, req.Topic)
	if err != nil && !engine.IsPersistenceError(err) {
		HandleAPIError(w, r, err, "")
		return
	}
	if engine.IsPersistenceError(err) {
		h.logPersistenceFailure(r, err, "start session")
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, StartSessionResponse{
		SessionID: sessionID,
		Degraded:  engine.IsPersistenceError(err),
	})
}

// EndSession handles POST /sessions/end and returns the closed session.
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.EndSession(r.Context(), userID)
	if err != nil && !engine.IsPersistenceError(err) {
		HandleAPIError(w, r, err, "")
		return
	}
	if engine.IsPersistenceError(err) {
		h.logPersistenceFailure(r, err, "end session")
	}

	shared.RespondWithJSON(w, r, http.StatusOK,
		NewSessionResponse(session, engine.IsPersistenceError(err)))
}

// SubmitAnswer handles POST /study/answers and returns the updated snapshot.
func (h *StudyHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	snapshot, err := h.studyService.SubmitAnswer(r.Context(), userID, req.Topic, *req.Correct)
	if err != nil && !engine.IsPersistenceError(err) {
		HandleAPIError(w, r, err, "")
		return
	}
	if engine.IsPersistenceError(err) {
		h.logPersistenceFailure(r, err, "submit answer")
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// GetSnapshot handles GET /study/snapshot.
func (h *StudyHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	snapshot, err := h.studyService.Snapshot(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

// GetStreak handles GET /study/streak.
func (h *StudyHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	streak, err := h.studyService.Streak(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, streak)
}

// GetRecommendations handles GET /study/recommendations.
func (h *StudyHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	topics, err := h.studyService.RecommendedTopics(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, RecommendationsResponse{Topics: topics})
}

// RecordQuizScore handles POST /study/quizzes.
func (h *StudyHandler) RecordQuizScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req QuizScoreRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	err := h.studyService.RecordQuizScore(r.Context(), userID, req.Topic, req.Score, req.Total)
	if err != nil && !engine.IsPersistenceError(err) {
		HandleAPIError(w, r, err, "")
		return
	}
	if engine.IsPersistenceError(err) {
		h.logPersistenceFailure(r, err, "record quiz score")
	}

	w.WriteHeader(http.StatusNoContent)
}

// logPersistenceFailure records a state write failure that did not abort the
// operation. The in-memory state is authoritative and the next successful
// write captures it.
func (h *StudyHandler) logPersistenceFailure(r *http.Request, err error, operation string) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Warn("study state write failed, continuing with in-memory state",
		slog.String("operation", operation),
		slog.Any("error", err))
}
