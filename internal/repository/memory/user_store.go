package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ecocity/waste-api/internal/models"
)

// UserRepository is the in-memory credential store.
type UserRepository struct {
	store *Store
}

// NewUserRepository creates a user repository backed by the shared store.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

// Create inserts a new credential record.
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}
