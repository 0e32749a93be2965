package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atlasprep/atlasprep-api/internal/domain"
	"github.com/atlasprep/atlasprep-api/internal/store"
)

// MemoryUserStore is an in-memory implementation of store.UserStore.
// Passwords are hashed with bcrypt.MinCost to keep tests fast.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

// NewMemoryUserStore creates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[uuid.UUID]*domain.User),
	}
}

var _ store.UserStore = (*MemoryUserStore)(nil)

func copyUser(u *domain.User) *domain.User {
	dup := *u
	return &dup
}

// Create implements store.UserStore.Create
func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	m.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements store.UserStore.GetByID
func (m *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(user), nil
}

// GetByEmail implements store.UserStore.GetByEmail
func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements store.UserStore.Update
func (m *MemoryUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}

	for id, existing := range m.users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}

	if user.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
		if err != nil {
			return err
		}
		user.HashedPassword = string(hashed)
		user.Password = ""
	}

	m.users[user.ID] = copyUser(user)
	return nil
}

// Delete implements store.UserStore.Delete
func (m *MemoryUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

// WithTx implements store.UserStore.WithTx
func (m *MemoryUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
