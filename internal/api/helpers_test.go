package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/atlasprep/atlasprep-api/internal/api/shared"
	"github.com/atlasprep/atlasprep-api/internal/config"
	"github.com/atlasprep/atlasprep-api/internal/mocks"
	"github.com/atlasprep/atlasprep-api/internal/service/study"
)

// testAuthConfig returns a valid auth configuration for handler tests.
func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-long-enough-for-tests",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

// testEnv bundles the stores and service wired into the handlers under test.
type testEnv struct {
	svc    *study.Service
	states *mocks.MemoryStudyStateStore
	notes  *mocks.MemoryNoteStore
	cards  *mocks.MemoryFlashcardStore
	users  *mocks.MemoryUserStore
	userID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	states := mocks.NewMemoryStudyStateStore()
	notes := mocks.NewMemoryNoteStore()
	cards := mocks.NewMemoryFlashcardStore()

	svc, err := study.NewService(states, notes, cards, nil, nil, nil, nil)
	require.NoError(t, err)

	return &testEnv{
		svc:    svc,
		states: states,
		notes:  notes,
		cards:  cards,
		users:  mocks.NewMemoryUserStore(),
		userID: uuid.New(),
	}
}

// doRequest performs a request against the router as the given user. A nil
// body sends an empty request; a uuid.Nil user leaves the context
// unauthenticated.
func doRequest(
	t *testing.T,
	router http.Handler,
	method, target string,
	body any,
	userID uuid.UUID,
) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
		req = req.WithContext(ctx)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded JSON response into out.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// newTestRouter mounts the study domain handlers the way the server does,
// minus authentication middleware.
func newTestRouter(env *testEnv) chi.Router {
	studyHandler := NewStudyHandler(env.svc, nil)
	noteHandler := NewNoteHandler(env.svc, nil)
	cardHandler := NewFlashcardHandler(env.svc, nil)

	r := chi.NewRouter()
	r.Post("/sessions", studyHandler.StartSession)
	r.Post("/sessions/end", studyHandler.EndSession)
	r.Post("/study/answers", studyHandler.SubmitAnswer)
	r.Get("/study/snapshot", studyHandler.GetSnapshot)
	r.Get("/study/streak", studyHandler.GetStreak)
	r.Get("/study/recommendations", studyHandler.GetRecommendations)
	r.Post("/study/quizzes", studyHandler.RecordQuizScore)

	r.Post("/notes", noteHandler.CreateNote)
	r.Get("/notes", noteHandler.ListNotes)
	r.Get("/notes/{id}", noteHandler.GetNote)
	r.Put("/notes/{id}", noteHandler.UpdateNote)
	r.Delete("/notes/{id}", noteHandler.DeleteNote)

	r.Post("/flashcards", cardHandler.CreateFlashcard)
	r.Get("/flashcards", cardHandler.ListFlashcards)
	r.Get("/flashcards/due", cardHandler.GetDueFlashcards)
	r.Get("/flashcards/{id}", cardHandler.GetFlashcard)
	r.Delete("/flashcards/{id}", cardHandler.DeleteFlashcard)
	r.Post("/flashcards/{id}/review", cardHandler.ReviewFlashcard)

	return r
}
