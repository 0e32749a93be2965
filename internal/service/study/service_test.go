package study_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/engine"
	"github.com/atlasprep/atlasprep-api/internal/mocks"
	"github.com/atlasprep/atlasprep-api/internal/service/study"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

type fixture struct {
	svc    *study.Service
	states *mocks.MemoryStudyStateStore
	notes  *mocks.MemoryNoteStore
	cards  *mocks.MemoryFlashcardStore
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	states := mocks.NewMemoryStudyStateStore()
	notes := mocks.NewMemoryNoteStore()
	cards := mocks.NewMemoryFlashcardStore()

	svc, err := study.NewService(states, notes, cards, nil, nil, nil, nil)
	require.NoError(t, err)

	return &fixture{
		svc:    svc,
		states: states,
		notes:  notes,
		cards:  cards,
		userID: uuid.New(),
	}
}

func TestNewServiceRequiresStores(t *testing.T) {
	t.Parallel()

	_, err := study.NewService(nil, mocks.NewMemoryNoteStore(), mocks.NewMemoryFlashcardStore(), nil, nil, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSessionLifecyclePersistsState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.StartSession(ctx, f.userID, "cardiology")
	require.NoError(t, err)

	_, err = f.svc.SubmitAnswer(ctx, f.userID, "cardiology", true)
	require.NoError(t, err)

	closed, err := f.svc.EndSession(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, closed.QuestionsAnswered)

	// Evict the engine and confirm the reloaded state matches.
	f.svc.Evict(f.userID)

	snap, err := f.svc.Snapshot(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Progress.TotalQuestions)
	assert.Len(t, snap.SessionHistory, 1)
	assert.Equal(t, 1, snap.Streak.Current)
}

func TestFreshUserStartsEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	snap, err := f.svc.Snapshot(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Progress.TotalQuestions)
	assert.Nil(t, snap.ActiveSession)

	topics, err := f.svc.RecommendedTopics(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestStartSessionPersistenceFailureIsDegradedSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	f.states.SaveErr = errors.New("disk full")

	id, err := f.svc.StartSession(ctx, f.userID, "cardiology")
	require.Error(t, err)
	assert.True(t, engine.IsPersistenceError(err))
	assert.NotEqual(t, uuid.Nil, id, "session starts despite the failed save")

	// In-memory state is authoritative.
	snap, err := f.svc.Snapshot(ctx, f.userID)
	require.NoError(t, err)
	require.NotNil(t, snap.ActiveSession)
}

func TestRecordQuizScoreValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.RecordQuizScore(ctx, f.userID, "cardiology", -1, 10), study.ErrInvalidScore)
	assert.ErrorIs(t, f.svc.RecordQuizScore(ctx, f.userID, "cardiology", 5, 0), study.ErrInvalidScore)
	assert.ErrorIs(t, f.svc.RecordQuizScore(ctx, f.userID, "cardiology", 11, 10), study.ErrInvalidScore)

	require.NoError(t, f.svc.RecordQuizScore(ctx, f.userID, "cardiology", 8, 10))

	snap, err := f.svc.Snapshot(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, snap.QuizScores, 1)
}

func TestNoteLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	note, err := f.svc.CreateNote(ctx, f.userID, "cardiology", "Preload", "Starling curve...", []string{"physiology"})
	require.NoError(t, err)

	got, err := f.svc.GetNote(ctx, f.userID, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Preload", got.Title)

	updated, err := f.svc.UpdateNote(ctx, f.userID, note.ID, "Preload and afterload", "More detail.", nil)
	require.NoError(t, err)
	assert.Equal(t, "Preload and afterload", updated.Title)

	listed, err := f.svc.ListNotes(ctx, f.userID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	require.NoError(t, f.svc.DeleteNote(ctx, f.userID, note.ID))
	_, err = f.svc.GetNote(ctx, f.userID, note.ID)
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}

func TestNoteOwnership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	note, err := f.svc.CreateNote(ctx, f.userID, "cardiology", "Preload", "Starling curve...", nil)
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = f.svc.GetNote(ctx, stranger, note.ID)
	assert.ErrorIs(t, err, study.ErrNotOwned)

	_, err = f.svc.UpdateNote(ctx, stranger, note.ID, "hijack", "hijack", nil)
	assert.ErrorIs(t, err, study.ErrNotOwned)

	assert.ErrorIs(t, f.svc.DeleteNote(ctx, stranger, note.ID), study.ErrNotOwned)
}

func TestCreateNoteCountsAgainstActiveSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	// Without a session the note is stored and nothing else happens.
	_, err := f.svc.CreateNote(ctx, f.userID, "cardiology", "One", "Content.", nil)
	require.NoError(t, err)

	_, err = f.svc.StartSession(ctx, f.userID, "cardiology")
	require.NoError(t, err)

	_, err = f.svc.CreateNote(ctx, f.userID, "cardiology", "Two", "Content.", nil)
	require.NoError(t, err)

	snap, err := f.svc.Snapshot(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.ActiveSession.NotesCreated)
}

func TestFlashcardReviewFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	card, err := f.svc.CreateFlashcard(ctx, f.userID, "cardiology",
		"What law relates preload to stroke volume?", "Frank-Starling law", domain.DifficultyMedium)
	require.NoError(t, err)

	state, err := f.svc.ReviewFlashcard(ctx, f.userID, card.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ReviewCount)
	assert.Equal(t, 1, state.CorrectCount)
	assert.False(t, state.NextReview.IsZero())

	// A foreign user cannot review someone else's card.
	_, err = f.svc.ReviewFlashcard(ctx, uuid.New(), card.ID, true)
	assert.ErrorIs(t, err, study.ErrNotOwned)

	// An unknown card is reported, not scheduled.
	_, err = f.svc.ReviewFlashcard(ctx, f.userID, uuid.New(), true)
	assert.ErrorIs(t, err, store.ErrFlashcardNotFound)
}

func TestDueFlashcardsPropagatesStoreFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	card, err := f.svc.CreateFlashcard(ctx, f.userID, "cardiology", "Q", "A", domain.DifficultyMedium)
	require.NoError(t, err)

	// Seed stored state with the card already due, plus a schedule entry
	// whose card no longer exists.
	state := domain.NewStudyState()
	state.Flashcards[card.ID] = domain.ReviewState{
		ReviewCount:  1,
		CorrectCount: 1,
		LastReviewed: time.Now().Add(-48 * time.Hour),
		NextReview:   time.Now().Add(-time.Hour),
	}
	state.Flashcards[uuid.New()] = domain.ReviewState{
		ReviewCount: 1,
		NextReview:  time.Now().Add(-time.Hour),
	}
	require.NoError(t, f.states.Save(ctx, f.userID, state))

	// A store failure that is not a missing card aborts the listing
	// instead of silently shortening it.
	f.cards.GetErr = errors.New("connection reset by peer")
	_, err = f.svc.DueFlashcards(ctx, f.userID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrFlashcardNotFound)

	// Once the store recovers the orphaned entry is skipped and the
	// surviving card is listed.
	f.cards.GetErr = nil
	due, err := f.svc.DueFlashcards(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, card.ID, due[0].Card.ID)
}

func TestDueFlashcardsSkipsDeletedCards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	keep, err := f.svc.CreateFlashcard(ctx, f.userID, "cardiology", "Q1", "A1", domain.DifficultyEasy)
	require.NoError(t, err)
	gone, err := f.svc.CreateFlashcard(ctx, f.userID, "cardiology", "Q2", "A2", domain.DifficultyEasy)
	require.NoError(t, err)

	// An incorrect review schedules the card one day out; nothing is due yet.
	_, err = f.svc.ReviewFlashcard(ctx, f.userID, keep.ID, false)
	require.NoError(t, err)
	_, err = f.svc.ReviewFlashcard(ctx, f.userID, gone.ID, false)
	require.NoError(t, err)

	due, err := f.svc.DueFlashcards(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, f.svc.DeleteFlashcard(ctx, f.userID, gone.ID))

	// Still nothing due, and the deleted card never resurfaces.
	due, err = f.svc.DueFlashcards(ctx, f.userID)
	require.NoError(t, err)
	for _, d := range due {
		assert.NotEqual(t, gone.ID, d.Card.ID)
	}
}
