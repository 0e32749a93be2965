package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/domain/srs"
	"github.com/atlasprep/atlasprep-api/internal/engine"
	"github.com/atlasprep/atlasprep-api/internal/platform/logger"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// Service coordinates study activity for all users. It owns one engine per
// active user; engines are created lazily from persisted state and kept for
// the life of the process so concurrent requests for the same user serialize
// on the engine's own lock.
type Service struct {
	stateStore store.StudyStateStore
	noteStore  store.NoteStore
	cardStore  store.FlashcardStore
	db         *sql.DB
	scheduler  srs.Service
	clock      engine.Clock
	logger     *slog.Logger

	mu      sync.Mutex
	engines map[uuid.UUID]*engine.Engine
}

// NewService creates a study Service.
// It returns an error if any of the required stores is nil. The db handle
// backs multi-row writes with transactions; a nil db is allowed for
// in-memory stores, which write directly.
func NewService(
	stateStore store.StudyStateStore,
	noteStore store.NoteStore,
	cardStore store.FlashcardStore,
	db *sql.DB,
	scheduler srs.Service,
	clock engine.Clock,
	log *slog.Logger,
) (*Service, error) {
	if stateStore == nil {
		return nil, domain.NewValidationError("stateStore", "cannot be nil", domain.ErrValidation)
	}
	if noteStore == nil {
		return nil, domain.NewValidationError("noteStore", "cannot be nil", domain.ErrValidation)
	}
	if cardStore == nil {
		return nil, domain.NewValidationError("cardStore", "cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		scheduler = srs.NewDefaultService()
	}
	if clock == nil {
		clock = engine.NewClock()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		stateStore: stateStore,
		noteStore:  noteStore,
		cardStore:  cardStore,
		db:         db,
		scheduler:  scheduler,
		clock:      clock,
		logger:     log.With(slog.String("component", "study_service")),
		engines:    make(map[uuid.UUID]*engine.Engine),
	}, nil
}

// stateSaver adapts a StudyStateStore to the engine's Saver interface.
type stateSaver struct {
	store store.StudyStateStore
}

func (s stateSaver) SaveState(ctx context.Context, userID uuid.UUID, state *domain.StudyState) error {
	return s.store.Save(ctx, userID, state)
}

// engineFor returns the user's engine, creating it from persisted state on
// first use. A user with no stored state starts from an empty one.
func (s *Service) engineFor(ctx context.Context, userID uuid.UUID) (*engine.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if eng, ok := s.engines[userID]; ok {
		return eng, nil
	}

	state, err := s.stateStore.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrStudyStateNotFound) {
			return nil, fmt.Errorf("failed to load study state: %w", err)
		}
		state = nil // New returns an empty state for nil
	}

	eng := engine.New(userID, state, s.scheduler, s.clock, stateSaver{s.stateStore}, s.logger)
	s.engines[userID] = eng

	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("study engine initialized",
		slog.String("user_id", userID.String()),
		slog.Bool("from_storage", state != nil))

	return eng, nil
}

// Evict drops the user's cached engine. The next operation reloads state
// from storage. Used after account deletion and by tests.
func (s *Service) Evict(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.engines, userID)
}

// StartSession begins a study session for the user on the given topic.
// Returns the new session's ID. The error may be an engine.PersistenceError,
// in which case the session did start and callers should treat it as a
// degraded success.
func (s *Service) StartSession(ctx context.Context, userID uuid.UUID, topic string) (uuid.UUID, error) {
	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return uuid.Nil, err
	}
	return eng.StartSession(ctx, topic)
}

// EndSession closes the user's active session and returns the closed record.
func (s *Service) EndSession(ctx context.Context, userID uuid.UUID) (*domain.StudySession, error) {
	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return eng.EndSession(ctx)
}

// SubmitAnswer records a practice answer for the topic and returns the
// updated snapshot.
func (s *Service) SubmitAnswer(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
	correct bool,
) (*engine.Snapshot, error) {
	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return eng.SubmitAnswer(ctx, topic, correct)
}

// Snapshot returns the user's current aggregate study state.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (*engine.Snapshot, error) {
	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return eng.Snapshot(), nil
}

// Streak returns the user's current study streak.
func (s *Service) Streak(ctx context.Context, userID uuid.UUID) (domain.StudyStreak, error) {
	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return domain.StudyStreak{}, err
	}
	return eng.Streak(), nil
}

// RecommendedTopics returns the user's focus areas, weakest first.
func (s *Service) RecommendedTopics(ctx context.Context, userID uuid.UUID) ([]string, error) {
	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return eng.RecommendedTopics(), nil
}

// RecordQuizScore stores a completed quiz result for the topic.
// Returns ErrInvalidScore when the score is negative, the total is not
// positive, or the score exceeds the total.
func (s *Service) RecordQuizScore(
	ctx context.Context,
	userID uuid.UUID,
	topic string,
	score, total int,
) error {
	if score < 0 || total <= 0 || score > total {
		return fmt.Errorf("%w: %d/%d", ErrInvalidScore, score, total)
	}

	eng, err := s.engineFor(ctx, userID)
	if err != nil {
		return err
	}
	return eng.RecordQuizScore(ctx, topic, score, total)
}
