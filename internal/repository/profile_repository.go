package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecocity/waste-api/internal/models"
)

// ProfileRepository provides database access for citizen/admin profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, user_id, name, email, role, credits, created_at, updated_at`

// FindByUserID returns the profile owned by the given auth user.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1 LIMIT 1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by user id: %w", err)
	}
	return &profile, nil
}

// GetOrCreate loads the profile for userID, lazily creating it on first
// sign-in. The insert is conditional (ON CONFLICT DO NOTHING) so two
// concurrent first-logins cannot create duplicate rows; whichever insert
// loses the race falls through to the select.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	const insert = `INSERT INTO profiles (id, user_id, name, email, role, credits, created_at, updated_at)
		VALUES (:id, :user_id, :name, :email, :role, :credits, :created_at, :updated_at)
		ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, insert, profile); err != nil {
		return nil, fmt.Errorf("get-or-create profile: %w", err)
	}

	return r.FindByUserID(ctx, profile.UserID)
}

// UpdateRole patches the stored role for a profile.
func (r *ProfileRepository) UpdateRole(ctx context.Context, userID string, role models.ProfileRole) error {
	const query = `UPDATE profiles SET role = $2, updated_at = $3 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, role, time.Now().UTC()); err != nil {
		return fmt.Errorf("update profile role: %w", err)
	}
	return nil
}

// AddCredits applies an additive delta and returns the updated profile.
func (r *ProfileRepository) AddCredits(ctx context.Context, userID string, delta int) (*models.Profile, error) {
	query := fmt.Sprintf(`UPDATE profiles SET credits = credits + $2, updated_at = $3 WHERE user_id = $1 RETURNING %s`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, userID, delta, time.Now().UTC()); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("add credits: %w", err)
	}
	return &profile, nil
}

// List returns profiles matching the filter, oldest first. The stats and
// users endpoints aggregate over the full set in process, so there is no
// pagination here by design.
func (r *ProfileRepository) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE 1=1`, profileColumns)
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.MinCredits != nil {
		conditions = append(conditions, fmt.Sprintf("credits >= $%d", len(args)+1))
		args = append(args, *filter.MinCredits)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC"

	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// TopByCredits returns the role="user" profile with the maximal balance.
// Ties resolve to the earliest created row, keeping the champion stable.
func (r *ProfileRepository) TopByCredits(ctx context.Context) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE role = 'user' ORDER BY credits DESC, created_at ASC LIMIT 1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("top profile by credits: %w", err)
	}
	return &profile, nil
}
