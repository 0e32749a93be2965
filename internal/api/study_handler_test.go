package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprep/atlasprep-api/internal/engine"
)

func boolPtr(b bool) *bool { return &b }

func TestStartSession(t *testing.T) {
	t.Parallel()

	t.Run("starts a session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: "algebra"}, env.userID)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp StartSessionResponse
		decodeBody(t, w, &resp)
		assert.NotEqual(t, uuid.Nil, resp.SessionID)
		assert.False(t, resp.Degraded)
	})

	t.Run("second start conflicts", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: "algebra"}, env.userID)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: "geometry"}, env.userID)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("blank topic rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: ""}, env.userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: "algebra"}, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("save failure degrades instead of failing", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)
		env.states.SaveErr = assert.AnError

		w := doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: "algebra"}, env.userID)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp StartSessionResponse
		decodeBody(t, w, &resp)
		assert.NotEqual(t, uuid.Nil, resp.SessionID)
		assert.True(t, resp.Degraded)
	})
}

func TestEndSession(t *testing.T) {
	t.Parallel()

	t.Run("closes the active session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: "algebra"}, env.userID)

		w := doRequest(t, router, http.MethodPost, "/sessions/end", nil, env.userID)

		require.Equal(t, http.StatusOK, w.Code)
		var resp SessionResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "algebra", resp.Topic)
		assert.NotNil(t, resp.EndTime)
	})

	t.Run("no active session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/sessions/end", nil, env.userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()

	t.Run("updates mastery and returns snapshot", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/study/answers",
			SubmitAnswerRequest{Topic: "algebra", Correct: boolPtr(true)}, env.userID)

		require.Equal(t, http.StatusOK, w.Code)
		var snap engine.Snapshot
		decodeBody(t, w, &snap)
		require.NotNil(t, snap.Progress)
		assert.Equal(t, 1, snap.Progress.TotalQuestions)
		assert.Equal(t, 1, snap.Progress.CorrectAnswers)
		assert.Equal(t, 1, snap.Progress.TopicsMastery["algebra"].Correct)
	})

	t.Run("missing correct field rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/study/answers",
			map[string]any{"topic": "algebra"}, env.userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("false is a valid answer", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/study/answers",
			SubmitAnswerRequest{Topic: "algebra", Correct: boolPtr(false)}, env.userID)

		require.Equal(t, http.StatusOK, w.Code)
		var snap engine.Snapshot
		decodeBody(t, w, &snap)
		assert.Equal(t, 0, snap.Progress.CorrectAnswers)
		assert.Equal(t, 1, snap.Progress.TotalQuestions)
	})
}

func TestGetSnapshot(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router := newTestRouter(env)

	w := doRequest(t, router, http.MethodGet, "/study/snapshot", nil, env.userID)

	require.Equal(t, http.StatusOK, w.Code)
	var snap engine.Snapshot
	decodeBody(t, w, &snap)
	require.NotNil(t, snap.Progress)
	assert.Equal(t, 0, snap.Progress.TotalQuestions)
	assert.Nil(t, snap.ActiveSession)
}

func TestGetStreak(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router := newTestRouter(env)

	doRequest(t, router, http.MethodPost, "/sessions",
		StartSessionRequest{Topic: "algebra"}, env.userID)

	w := doRequest(t, router, http.MethodGet, "/study/streak", nil, env.userID)

	require.Equal(t, http.StatusOK, w.Code)
	var streak struct {
		Current int `json:"current"`
		Longest int `json:"longest"`
	}
	decodeBody(t, w, &streak)
	assert.Equal(t, 1, streak.Current)
	assert.Equal(t, 1, streak.Longest)
}

func TestGetRecommendations(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router := newTestRouter(env)

	// One weak topic, one strong topic.
	for i := 0; i < 10; i++ {
		doRequest(t, router, http.MethodPost, "/study/answers",
			SubmitAnswerRequest{Topic: "strong", Correct: boolPtr(true)}, env.userID)
		doRequest(t, router, http.MethodPost, "/study/answers",
			SubmitAnswerRequest{Topic: "weak", Correct: boolPtr(i%2 == 0)}, env.userID)
	}

	w := doRequest(t, router, http.MethodGet, "/study/recommendations", nil, env.userID)

	require.Equal(t, http.StatusOK, w.Code)
	var resp RecommendationsResponse
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.Topics)
	assert.Equal(t, "weak", resp.Topics[0])
	assert.NotContains(t, resp.Topics, "strong")
}

func TestRecordQuizScore(t *testing.T) {
	t.Parallel()

	t.Run("records a quiz", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/study/quizzes",
			QuizScoreRequest{Topic: "algebra", Score: 8, Total: 10}, env.userID)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(t, router, http.MethodGet, "/study/snapshot", nil, env.userID)
		require.Equal(t, http.StatusOK, w.Code)
		var snap engine.Snapshot
		decodeBody(t, w, &snap)
		require.Len(t, snap.QuizScores, 1)
		assert.Equal(t, 8, snap.QuizScores[0].Score)
		assert.Equal(t, 10, snap.QuizScores[0].Total)
	})

	t.Run("score above total rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/study/quizzes",
			QuizScoreRequest{Topic: "algebra", Score: 11, Total: 10}, env.userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero total rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/study/quizzes",
			QuizScoreRequest{Topic: "algebra", Score: 0, Total: 0}, env.userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
