package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ecocity/waste-api/internal/models"
)

// ProfileRepository is the in-memory profile store.
type ProfileRepository struct {
	store *Store
}

// NewProfileRepository creates a profile repository backed by the shared store.
func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{store: store}
}

// FindByUserID returns the profile owned by the given auth user.
func (r *ProfileRepository) FindByUserID(_ context.Context, userID string) (*models.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p := r.store.profileByUserID(userID)
	if p == nil {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

// GetOrCreate loads the profile for the user, lazily creating it on first
// sign-in. The check-and-insert happens under one lock so concurrent first
// logins cannot create duplicates.
func (r *ProfileRepository) GetOrCreate(_ context.Context, profile *models.Profile) (*models.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing := r.store.profileByUserID(profile.UserID); existing != nil {
		clone := *existing
		return &clone, nil
	}

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	clone := *profile
	r.store.profiles[profile.ID] = &clone
	result := clone
	return &result, nil
}

// UpdateRole patches the stored role for a profile.
func (r *ProfileRepository) UpdateRole(_ context.Context, userID string, role models.ProfileRole) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.store.profileByUserID(userID)
	if p == nil {
		return sql.ErrNoRows
	}
	p.Role = role
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// AddCredits applies an additive delta and returns the updated profile.
func (r *ProfileRepository) AddCredits(_ context.Context, userID string, delta int) (*models.Profile, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.store.profileByUserID(userID)
	if p == nil {
		return nil, sql.ErrNoRows
	}
	p.Credits += delta
	p.UpdatedAt = time.Now().UTC()
	clone := *p
	return &clone, nil
}

// List returns profiles matching the filter, oldest first.
func (r *ProfileRepository) List(_ context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var profiles []models.Profile
	for _, p := range r.store.profiles {
		if filter.Role != nil && p.Role != *filter.Role {
			continue
		}
		if filter.MinCredits != nil && p.Credits < *filter.MinCredits {
			continue
		}
		profiles = append(profiles, *p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.Before(profiles[j].CreatedAt)
	})
	return profiles, nil
}

// TopByCredits returns the role="user" profile with the maximal balance.
// Ties resolve to the earliest created row.
func (r *ProfileRepository) TopByCredits(_ context.Context) (*models.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var top *models.Profile
	for _, p := range r.store.profiles {
		if p.Role != models.RoleUser {
			continue
		}
		if top == nil ||
			p.Credits > top.Credits ||
			(p.Credits == top.Credits && p.CreatedAt.Before(top.CreatedAt)) {
			top = p
		}
	}
	if top == nil {
		return nil, sql.ErrNoRows
	}
	clone := *top
	return &clone, nil
}
