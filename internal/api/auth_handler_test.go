package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasprep/atlasprep-api/internal/api/shared"
	"github.com/atlasprep/atlasprep-api/internal/mocks"
	"github.com/atlasprep/atlasprep-api/internal/service/auth"
)

func newAuthRouter(t *testing.T) (chi.Router, *mocks.MemoryUserStore) {
	t.Helper()

	users := mocks.NewMemoryUserStore()
	jwtService, err := auth.NewJWTService(testAuthConfig())
	require.NoError(t, err)

	handler := NewAuthHandler(users, jwtService, auth.NewBcryptVerifier(), testAuthConfig(), nil)

	r := chi.NewRouter()
	r.Post("/auth/register", handler.Register)
	r.Post("/auth/login", handler.Login)
	r.Post("/auth/refresh", handler.RefreshToken)
	return r, users
}

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates user and returns tokens", func(t *testing.T) {
		t.Parallel()
		router, users := newAuthRouter(t)

		w := doRequest(t, router, http.MethodPost, "/auth/register", RegisterRequest{
			Email:    "student@example.com",
			Password: "correct-horse-battery",
		}, uuid.Nil)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp AuthResponse
		decodeBody(t, w, &resp)
		assert.NotEqual(t, uuid.Nil, resp.UserID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.NotEmpty(t, resp.ExpiresAt)

		stored, err := users.GetByEmail(context.Background(), "student@example.com")
		require.NoError(t, err)
		assert.Equal(t, resp.UserID, stored.ID)
		assert.Empty(t, stored.Password)
		assert.NotEmpty(t, stored.HashedPassword)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)

		req := RegisterRequest{Email: "dup@example.com", Password: "correct-horse-battery"}
		w := doRequest(t, router, http.MethodPost, "/auth/register", req, uuid.Nil)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(t, router, http.MethodPost, "/auth/register", req, uuid.Nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects short password", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)

		w := doRequest(t, router, http.MethodPost, "/auth/register", RegisterRequest{
			Email:    "short@example.com",
			Password: "tooshort",
		}, uuid.Nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)

		w := doRequest(t, router, http.MethodPost, "/auth/register", RegisterRequest{
			Email:    "not-an-email",
			Password: "correct-horse-battery",
		}, uuid.Nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	register := func(t *testing.T, router chi.Router, email, password string) {
		t.Helper()
		w := doRequest(t, router, http.MethodPost, "/auth/register", RegisterRequest{
			Email:    email,
			Password: password,
		}, uuid.Nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)
		register(t, router, "login@example.com", "correct-horse-battery")

		w := doRequest(t, router, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "login@example.com",
			Password: "correct-horse-battery",
		}, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp AuthResponse
		decodeBody(t, w, &resp)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)
		register(t, router, "wrongpw@example.com", "correct-horse-battery")

		w := doRequest(t, router, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "wrongpw@example.com",
			Password: "wrong-password-entirely",
		}, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email looks like wrong password", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)

		w := doRequest(t, router, http.MethodPost, "/auth/login", LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever-password",
		}, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp shared.ErrorResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "Invalid credentials", resp.Error)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("rotates a valid refresh token", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)

		w := doRequest(t, router, http.MethodPost, "/auth/register", RegisterRequest{
			Email:    "refresh@example.com",
			Password: "correct-horse-battery",
		}, uuid.Nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var authResp AuthResponse
		decodeBody(t, w, &authResp)

		w = doRequest(t, router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{
			RefreshToken: authResp.RefreshToken,
		}, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp RefreshTokenResponse
		decodeBody(t, w, &resp)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("rejects an access token used as refresh token", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)

		w := doRequest(t, router, http.MethodPost, "/auth/register", RegisterRequest{
			Email:    "wrongtype@example.com",
			Password: "correct-horse-battery",
		}, uuid.Nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var authResp AuthResponse
		decodeBody(t, w, &authResp)

		w = doRequest(t, router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{
			RefreshToken: authResp.AccessToken,
		}, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		router, _ := newAuthRouter(t)

		w := doRequest(t, router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{
			RefreshToken: "not.a.token",
		}, uuid.Nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
