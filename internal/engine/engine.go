package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/domain/srs"
)

// Saver is the engine's view of the storage collaborator: a keyed set
// operation for the per-user aggregate record. The engine requests
// persistence; it never implements it.
type Saver interface {
	SaveState(ctx context.Context, userID uuid.UUID, state *domain.StudyState) error
}

// Engine is the facade composing session management, mastery tracking,
// review scheduling, and streak computation over one user's StudyState.
// It exclusively owns the aggregate; callers only ever see copies.
//
// Calls are serialized by an internal mutex, so each mutation is atomic
// with respect to callers and getters always observe the result of the
// most recently completed mutation.
type Engine struct {
	mu        sync.Mutex
	userID    uuid.UUID
	state     *domain.StudyState
	clock     Clock
	scheduler srs.Service
	saver     Saver
	logger    *slog.Logger
}

// New creates an Engine for the given user over the given state. A nil
// state starts empty. The saver may be nil, in which case the engine keeps
// state in memory only (used by tests).
func New(
	userID uuid.UUID,
	state *domain.StudyState,
	scheduler srs.Service,
	clock Clock,
	saver Saver,
	logger *slog.Logger,
) *Engine {
	if scheduler == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("scheduler cannot be nil")
	}
	if clock == nil {
		clock = NewClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if state == nil {
		state = domain.NewStudyState()
	}
	state.Normalize()

	return &Engine{
		userID:    userID,
		state:     state,
		clock:     clock,
		scheduler: scheduler,
		saver:     saver,
		logger:    logger.With(slog.String("component", "study_engine")),
	}
}

// UserID returns the user this engine belongs to.
func (e *Engine) UserID() uuid.UUID {
	return e.userID
}

// StartSession opens a new study session for the topic and advances the
// study streak. Returns ErrSessionAlreadyActive if a session is already
// open and domain.ErrInvalidTopic for a blank topic.
//
// On success the session ID is returned. A persistence failure still
// returns the session ID alongside a PersistenceError; the in-memory
// session is open either way.
func (e *Engine) StartSession(ctx context.Context, topic string) (uuid.UUID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(topic) == "" {
		return uuid.Nil, domain.ErrInvalidTopic
	}
	if e.state.ActiveSession != nil {
		return uuid.Nil, ErrSessionAlreadyActive
	}

	now := e.clock.Now()
	session, err := domain.NewStudySession(topic, now)
	if err != nil {
		return uuid.Nil, err
	}

	e.state.ActiveSession = session
	e.state.Streak = e.state.Streak.Advance(now)

	e.logger.Debug("session started",
		slog.String("session_id", session.ID.String()),
		slog.String("topic", topic),
		slog.Int("streak", e.state.Streak.Current))

	return session.ID, e.save(ctx)
}

// EndSession closes the active session: the end time is stamped, the
// session duration is folded into total study time, and an immutable copy
// is appended to the history. Returns ErrNoActiveSession when idle.
func (e *Engine) EndSession(ctx context.Context) (*domain.StudySession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session := e.state.ActiveSession
	if session == nil {
		return nil, ErrNoActiveSession
	}

	if err := session.Close(e.clock.Now()); err != nil {
		return nil, err
	}

	e.state.SessionHistory = append(e.state.SessionHistory, *session.Clone())
	e.state.TotalStudyTime += session.DurationSeconds
	e.state.ActiveSession = nil

	e.logger.Debug("session ended",
		slog.String("session_id", session.ID.String()),
		slog.Int64("duration_seconds", session.DurationSeconds))

	return session.Clone(), e.save(ctx)
}

// SubmitAnswer records a question outcome: topic mastery first, then the
// active session's counters, then persistence. Mastery is tracked even
// outside a session; the session counters only move while one is open.
func (e *Engine) SubmitAnswer(ctx context.Context, topic string, correct bool) (*Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(topic) == "" {
		return nil, domain.ErrInvalidTopic
	}

	e.state.Progress.RecordOutcome(topic, correct, e.clock.Now())

	if session := e.state.ActiveSession; session != nil {
		if err := session.RecordAnswer(correct); err != nil {
			return nil, err
		}
	}

	snapshot := e.snapshotLocked()
	return snapshot, e.save(ctx)
}

// ReviewFlashcard applies a review outcome to the item's scheduling state
// and counts the review against the active session when one is open.
// Unseen items start from the zero review state and are due immediately.
func (e *Engine) ReviewFlashcard(ctx context.Context, itemID uuid.UUID, correct bool) (domain.ReviewState, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.scheduler.ApplyReview(e.state.Flashcards[itemID], correct, e.clock.Now())
	if err != nil {
		return domain.ReviewState{}, err
	}
	e.state.Flashcards[itemID] = next

	if session := e.state.ActiveSession; session != nil {
		if err := session.RecordFlashcardReview(); err != nil {
			return domain.ReviewState{}, err
		}
	}

	return next, e.save(ctx)
}

// RecordNoteCreated counts a note creation against the active session.
// Returns ErrNoActiveSession when idle; note content itself is stored by
// the caller, not the engine.
func (e *Engine) RecordNoteCreated(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session := e.state.ActiveSession
	if session == nil {
		return ErrNoActiveSession
	}
	if err := session.RecordNoteCreated(); err != nil {
		return err
	}

	return e.save(ctx)
}

// RecordQuizScore appends a completed quiz result for the topic.
func (e *Engine) RecordQuizScore(ctx context.Context, topic string, score, total int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(topic) == "" {
		return domain.ErrInvalidTopic
	}

	e.state.QuizScores = append(e.state.QuizScores, domain.QuizScore{
		Topic: topic,
		Score: score,
		Total: total,
		Date:  e.clock.Now(),
	})

	return e.save(ctx)
}

// Snapshot returns a read-only copy of the full engine state.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Streak returns the current study streak.
func (e *Engine) Streak() domain.StudyStreak {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Streak
}

// RecommendedTopics ranks practiced topics by weakness, weakest first.
// The ranking is recomputed from current mastery on every call.
func (e *Engine) RecommendedTopics() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return RecommendTopics(e.state.Progress)
}

// ReviewState returns the scheduling state for a flashcard and whether the
// engine has seen the item before.
func (e *Engine) ReviewState(itemID uuid.UUID) (domain.ReviewState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.state.Flashcards[itemID]
	return state, ok
}

// DueFlashcardIDs returns the IDs of all tracked items whose next review
// time has been reached.
func (e *Engine) DueFlashcardIDs() []uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now()
	var due []uuid.UUID
	for id, state := range e.state.Flashcards {
		if e.scheduler.IsDue(state, now) {
			due = append(due, id)
		}
	}
	return due
}

// save persists the aggregate through the storage collaborator. A failure
// is wrapped in PersistenceError and reported to the caller; the in-memory
// state stays authoritative and the engine remains usable.
func (e *Engine) save(ctx context.Context) error {
	if e.saver == nil {
		return nil
	}

	if err := e.saver.SaveState(ctx, e.userID, e.state); err != nil {
		e.logger.Warn("study state save failed, in-memory state remains authoritative",
			slog.String("user_id", e.userID.String()),
			slog.String("error", err.Error()))
		return &PersistenceError{Err: err}
	}
	return nil
}
