package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/engine"
)

func TestCreateNote(t *testing.T) {
	t.Parallel()

	t.Run("creates a note", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
			Topic:   "algebra",
			Title:   "Quadratic formula",
			Content: "x = (-b ± sqrt(b²-4ac)) / 2a",
			Tags:    []string{"formulas"},
		}, env.userID)

		require.Equal(t, http.StatusCreated, w.Code)
		var note domain.Note
		decodeBody(t, w, &note)
		assert.NotEqual(t, uuid.Nil, note.ID)
		assert.Equal(t, env.userID, note.UserID)
		assert.Equal(t, "algebra", note.Topic)
		assert.Equal(t, []string{"formulas"}, note.Tags)
	})

	t.Run("counts against an active session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		doRequest(t, router, http.MethodPost, "/sessions",
			StartSessionRequest{Topic: "algebra"}, env.userID)
		doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
			Topic: "algebra", Title: "t", Content: "c",
		}, env.userID)

		w := doRequest(t, router, http.MethodPost, "/sessions/end", nil, env.userID)
		require.Equal(t, http.StatusOK, w.Code)
		var session SessionResponse
		decodeBody(t, w, &session)
		assert.Equal(t, 1, session.NotesCreated)
	})

	t.Run("missing title rejected", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
			Topic: "algebra", Content: "c",
		}, env.userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetNote(t *testing.T) {
	t.Parallel()

	t.Run("returns an owned note", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
			Topic: "algebra", Title: "t", Content: "c",
		}, env.userID)
		var created domain.Note
		decodeBody(t, w, &created)

		w = doRequest(t, router, http.MethodGet, "/notes/"+created.ID.String(), nil, env.userID)
		require.Equal(t, http.StatusOK, w.Code)
		var note domain.Note
		decodeBody(t, w, &note)
		assert.Equal(t, created.ID, note.ID)
	})

	t.Run("foreign note is forbidden", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
			Topic: "algebra", Title: "t", Content: "c",
		}, env.userID)
		var created domain.Note
		decodeBody(t, w, &created)

		w = doRequest(t, router, http.MethodGet, "/notes/"+created.ID.String(), nil, uuid.New())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown note", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodGet, "/notes/"+uuid.NewString(), nil, env.userID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		router := newTestRouter(env)

		w := doRequest(t, router, http.MethodGet, "/notes/not-a-uuid", nil, env.userID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListNotes(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router := newTestRouter(env)

	for _, topic := range []string{"algebra", "algebra", "geometry"} {
		w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
			Topic: topic, Title: "t", Content: "c",
		}, env.userID)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("all notes", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/notes", nil, env.userID)
		require.Equal(t, http.StatusOK, w.Code)
		var resp NoteListResponse
		decodeBody(t, w, &resp)
		assert.Len(t, resp.Notes, 3)
		assert.Equal(t, defaultPageLimit, resp.Limit)
	})

	t.Run("filtered by topic", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/notes?topic=geometry", nil, env.userID)
		require.Equal(t, http.StatusOK, w.Code)
		var resp NoteListResponse
		decodeBody(t, w, &resp)
		require.Len(t, resp.Notes, 1)
		assert.Equal(t, "geometry", resp.Notes[0].Topic)
	})

	t.Run("pagination", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/notes?limit=2&offset=2", nil, env.userID)
		require.Equal(t, http.StatusOK, w.Code)
		var resp NoteListResponse
		decodeBody(t, w, &resp)
		assert.Len(t, resp.Notes, 1)
		assert.Equal(t, 2, resp.Limit)
		assert.Equal(t, 2, resp.Offset)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		w := doRequest(t, router, http.MethodGet, "/notes", nil, uuid.New())
		require.Equal(t, http.StatusOK, w.Code)
		var resp NoteListResponse
		decodeBody(t, w, &resp)
		assert.Empty(t, resp.Notes)
	})
}

func TestUpdateNote(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router := newTestRouter(env)

	w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
		Topic: "algebra", Title: "before", Content: "c",
	}, env.userID)
	var created domain.Note
	decodeBody(t, w, &created)

	t.Run("applies edits", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPut, "/notes/"+created.ID.String(),
			UpdateNoteRequest{Title: "after", Content: "updated", Tags: []string{"x"}}, env.userID)

		require.Equal(t, http.StatusOK, w.Code)
		var note domain.Note
		decodeBody(t, w, &note)
		assert.Equal(t, "after", note.Title)
		assert.Equal(t, "updated", note.Content)
	})

	t.Run("foreign note is forbidden", func(t *testing.T) {
		w := doRequest(t, router, http.MethodPut, "/notes/"+created.ID.String(),
			UpdateNoteRequest{Title: "hijack", Content: "x"}, uuid.New())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDeleteNote(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router := newTestRouter(env)

	w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
		Topic: "algebra", Title: "t", Content: "c",
	}, env.userID)
	var created domain.Note
	decodeBody(t, w, &created)

	t.Run("foreign note is forbidden", func(t *testing.T) {
		w := doRequest(t, router, http.MethodDelete, "/notes/"+created.ID.String(), nil, uuid.New())
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("removes the note", func(t *testing.T) {
		w := doRequest(t, router, http.MethodDelete, "/notes/"+created.ID.String(), nil, env.userID)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doRequest(t, router, http.MethodGet, "/notes/"+created.ID.String(), nil, env.userID)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// A note created while state writes fail still persists; the response just
// loses the session attribution.
func TestCreateNoteDegradedPersistence(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	router := newTestRouter(env)

	doRequest(t, router, http.MethodPost, "/sessions",
		StartSessionRequest{Topic: "algebra"}, env.userID)
	env.states.SaveErr = assert.AnError

	w := doRequest(t, router, http.MethodPost, "/notes", CreateNoteRequest{
		Topic: "algebra", Title: "t", Content: "c",
	}, env.userID)

	require.Equal(t, http.StatusCreated, w.Code)
	var note domain.Note
	decodeBody(t, w, &note)
	assert.NotEqual(t, uuid.Nil, note.ID)

	// The engine state still carries the counter.
	env.states.SaveErr = nil
	wSnap := doRequest(t, router, http.MethodGet, "/study/snapshot", nil, env.userID)
	require.Equal(t, http.StatusOK, wSnap.Code)
	var snap engine.Snapshot
	decodeBody(t, wSnap, &snap)
	require.NotNil(t, snap.ActiveSession)
	assert.Equal(t, 1, snap.ActiveSession.NotesCreated)
}
