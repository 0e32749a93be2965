package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/domain/srs"
)

// fakeClock pins the engine's notion of now and can be moved by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingSaver counts saves and can be told to fail.
type recordingSaver struct {
	mu    sync.Mutex
	saves int
	err   error
}

func (s *recordingSaver) SaveState(ctx context.Context, userID uuid.UUID, state *domain.StudyState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return s.err
}

func (s *recordingSaver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *recordingSaver) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func newTestEngine(t *testing.T, now time.Time) (*Engine, *fakeClock, *recordingSaver) {
	t.Helper()
	clock := newFakeClock(now)
	saver := &recordingSaver{}
	eng := New(uuid.New(), nil, srs.NewDefaultService(), clock, saver, nil)
	return eng, clock, saver
}

var testStart = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func TestStartSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, saver := newTestEngine(t, testStart)

	id, err := eng.StartSession(ctx, "cardiology")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	snap := eng.Snapshot()
	require.NotNil(t, snap.ActiveSession)
	assert.Equal(t, id, snap.ActiveSession.ID)
	assert.Equal(t, "cardiology", snap.ActiveSession.Topic)
	assert.Equal(t, 1, snap.Streak.Current)
	assert.Equal(t, 1, saver.Saves())
}

func TestStartSessionWhileActiveFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, testStart)

	_, err := eng.StartSession(ctx, "cardiology")
	require.NoError(t, err)

	_, err = eng.StartSession(ctx, "neurology")
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)

	// The active session is untouched by the failed call.
	snap := eng.Snapshot()
	assert.Equal(t, "cardiology", snap.ActiveSession.Topic)
}

func TestStartSessionRejectsBlankTopic(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t, testStart)

	_, err := eng.StartSession(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidTopic)
}

func TestEndSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, clock, _ := newTestEngine(t, testStart)

	_, err := eng.StartSession(ctx, "cardiology")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	closed, err := eng.EndSession(ctx)
	require.NoError(t, err)

	assert.False(t, closed.Active())
	assert.EqualValues(t, 1800, closed.DurationSeconds)

	snap := eng.Snapshot()
	assert.Nil(t, snap.ActiveSession)
	require.Len(t, snap.SessionHistory, 1)
	assert.EqualValues(t, 1800, snap.TotalStudyTime)
}

func TestEndSessionWithoutActiveFails(t *testing.T) {
	t.Parallel()
	eng, _, saver := newTestEngine(t, testStart)

	_, err := eng.EndSession(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveSession)

	// History is unchanged and nothing was persisted.
	assert.Empty(t, eng.Snapshot().SessionHistory)
	assert.Equal(t, 0, saver.Saves())
}

func TestSubmitAnswerUpdatesMasteryAndSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, testStart)

	_, err := eng.StartSession(ctx, "cardiology")
	require.NoError(t, err)

	snap, err := eng.SubmitAnswer(ctx, "cardiology", true)
	require.NoError(t, err)
	_, err = eng.SubmitAnswer(ctx, "cardiology", false)
	require.NoError(t, err)

	snap = eng.Snapshot()
	assert.Equal(t, 2, snap.Progress.TotalQuestions)
	assert.Equal(t, 1, snap.Progress.CorrectAnswers)
	assert.Equal(t, 2, snap.ActiveSession.QuestionsAnswered)
	assert.Equal(t, 1, snap.ActiveSession.CorrectAnswers)

	mastery := snap.Progress.TopicsMastery["cardiology"]
	assert.Equal(t, 2, mastery.Total)
	assert.Equal(t, 1, mastery.Correct)
}

func TestSubmitAnswerOutsideSessionTracksMasteryOnly(t *testing.T) {
	t.Parallel()
	eng, _, _ := newTestEngine(t, testStart)

	snap, err := eng.SubmitAnswer(context.Background(), "anatomy", true)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Progress.TotalQuestions)
	assert.Nil(t, snap.ActiveSession)
}

func TestReviewFlashcardScheduling(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, clock, _ := newTestEngine(t, testStart)
	itemID := uuid.New()

	// First correct review: due in two days.
	state, err := eng.ReviewFlashcard(ctx, itemID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ReviewCount)
	assert.Equal(t, 1, state.CorrectCount)
	assert.True(t, state.NextReview.Equal(testStart.AddDate(0, 0, 2)))

	// Correct again at the due time: due four days later.
	clock.Set(state.NextReview)
	state, err = eng.ReviewFlashcard(ctx, itemID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, state.ReviewCount)
	assert.True(t, state.NextReview.Equal(testStart.AddDate(0, 0, 6)))

	// A lapse resets the interval to one day.
	clock.Set(state.NextReview)
	state, err = eng.ReviewFlashcard(ctx, itemID, false)
	require.NoError(t, err)
	assert.Equal(t, 3, state.ReviewCount)
	assert.Equal(t, 2, state.CorrectCount)
	assert.True(t, state.NextReview.Equal(testStart.AddDate(0, 0, 7)))
}

func TestReviewFlashcardCountsAgainstSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, testStart)

	_, err := eng.StartSession(ctx, "cardiology")
	require.NoError(t, err)

	_, err = eng.ReviewFlashcard(ctx, uuid.New(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, eng.Snapshot().ActiveSession.FlashcardsReviewed)
}

func TestDueFlashcardIDs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, clock, _ := newTestEngine(t, testStart)

	passing := uuid.New()
	lapsed := uuid.New()

	_, err := eng.ReviewFlashcard(ctx, passing, true) // due in 2 days
	require.NoError(t, err)
	_, err = eng.ReviewFlashcard(ctx, lapsed, false) // due in 1 day
	require.NoError(t, err)

	assert.Empty(t, eng.DueFlashcardIDs())

	clock.Advance(24 * time.Hour)
	due := eng.DueFlashcardIDs()
	require.Len(t, due, 1)
	assert.Equal(t, lapsed, due[0])

	clock.Advance(24 * time.Hour)
	assert.Len(t, eng.DueFlashcardIDs(), 2)
}

func TestRecordNoteCreated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, testStart)

	err := eng.RecordNoteCreated(ctx)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = eng.StartSession(ctx, "cardiology")
	require.NoError(t, err)

	require.NoError(t, eng.RecordNoteCreated(ctx))
	assert.Equal(t, 1, eng.Snapshot().ActiveSession.NotesCreated)
}

func TestRecordQuizScore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, testStart)

	require.NoError(t, eng.RecordQuizScore(ctx, "cardiology", 8, 10))

	snap := eng.Snapshot()
	require.Len(t, snap.QuizScores, 1)
	assert.Equal(t, "cardiology", snap.QuizScores[0].Topic)
	assert.Equal(t, 8, snap.QuizScores[0].Score)
	assert.True(t, snap.QuizScores[0].Date.Equal(testStart))
}

func TestStreakAcrossSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, clock, _ := newTestEngine(t, testStart)

	startAndEnd := func() {
		_, err := eng.StartSession(ctx, "cardiology")
		require.NoError(t, err)
		_, err = eng.EndSession(ctx)
		require.NoError(t, err)
	}

	// Five consecutive days.
	for i := 0; i < 5; i++ {
		clock.Set(testStart.AddDate(0, 0, i))
		startAndEnd()
	}
	assert.Equal(t, 5, eng.Streak().Current)

	// A second session on day five does not double-count.
	startAndEnd()
	assert.Equal(t, 5, eng.Streak().Current)

	// The next day extends the streak.
	clock.Set(testStart.AddDate(0, 0, 5))
	startAndEnd()
	assert.Equal(t, 6, eng.Streak().Current)
	assert.Equal(t, 6, eng.Streak().Longest)

	// A three-day gap resets the streak but not the longest.
	clock.Set(testStart.AddDate(0, 0, 8))
	startAndEnd()
	assert.Equal(t, 1, eng.Streak().Current)
	assert.Equal(t, 6, eng.Streak().Longest)
}

func TestPersistenceFailureKeepsStateAuthoritative(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, saver := newTestEngine(t, testStart)

	saver.Fail(errors.New("connection refused"))

	id, err := eng.StartSession(ctx, "cardiology")
	require.Error(t, err)
	assert.True(t, IsPersistenceError(err))
	assert.NotEqual(t, uuid.Nil, id)

	// The mutation stuck despite the failed save.
	snap := eng.Snapshot()
	require.NotNil(t, snap.ActiveSession)
	assert.Equal(t, id, snap.ActiveSession.ID)

	// The engine stays usable and a later save reconciles.
	saver.Fail(nil)
	_, err = eng.SubmitAnswer(ctx, "cardiology", true)
	assert.NoError(t, err)
}

func TestSnapshotIsDetached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, testStart)

	_, err := eng.SubmitAnswer(ctx, "cardiology", true)
	require.NoError(t, err)

	snap := eng.Snapshot()
	snap.Progress.RecordOutcome("cardiology", false, testStart)
	snap.Progress.RecordOutcome("cardiology", false, testStart)

	fresh := eng.Snapshot()
	assert.Equal(t, 1, fresh.Progress.TotalQuestions,
		"mutating a snapshot must not affect engine state")
}

func TestGettersReflectLatestMutation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, testStart)

	for i := 0; i < 10; i++ {
		_, err := eng.SubmitAnswer(ctx, "cardiology", i%2 == 0)
		require.NoError(t, err)
		assert.Equal(t, i+1, eng.Snapshot().Progress.TotalQuestions)
	}
}
