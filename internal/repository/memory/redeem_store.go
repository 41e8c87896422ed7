package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ecocity/waste-api/internal/models"
	"github.com/ecocity/waste-api/internal/repository"
)

// RedeemRepository is the in-memory redeem-code ledger.
type RedeemRepository struct {
	store *Store
}

// NewRedeemRepository creates a redeem repository backed by the shared store.
func NewRedeemRepository(store *Store) *RedeemRepository {
	return &RedeemRepository{store: store}
}

// Redeem decrements the balance and mints the code under one lock so both
// effects are atomic. A balance below cost leaves the store untouched and
// returns repository.ErrInsufficientCredits.
func (r *RedeemRepository) Redeem(_ context.Context, userID string, cost int, code string) (*models.RedeemCode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	p := r.store.profileByUserID(userID)
	if p == nil || p.Credits < cost {
		return nil, repository.ErrInsufficientCredits
	}
	p.Credits -= cost
	p.UpdatedAt = time.Now().UTC()

	redeemCode := &models.RedeemCode{
		ID:        uuid.NewString(),
		Code:      code,
		UserID:    userID,
		Redeemed:  false,
		CreatedAt: time.Now().UTC(),
	}
	r.store.codes[redeemCode.ID] = redeemCode

	clone := *redeemCode
	return &clone, nil
}

// List returns redeem codes, optionally scoped to one user, newest first.
func (r *RedeemRepository) List(_ context.Context, userID *string) ([]models.RedeemCode, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var codes []models.RedeemCode
	for _, c := range r.store.codes {
		if userID != nil && c.UserID != *userID {
			continue
		}
		codes = append(codes, *c)
	}

	sort.Slice(codes, func(i, j int) bool {
		return codes[i].CreatedAt.After(codes[j].CreatedAt)
	})
	return codes, nil
}

// MarkRedeemed flips an unused code to redeemed. Spent or unknown codes both
// report sql.ErrNoRows, mirroring the conditional update in the SQL driver.
func (r *RedeemRepository) MarkRedeemed(_ context.Context, code string) (*models.RedeemCode, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	needle := strings.ToUpper(code)
	for _, c := range r.store.codes {
		if c.Code == needle && !c.Redeemed {
			c.Redeemed = true
			clone := *c
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByCode returns a code row by its token value.
func (r *RedeemRepository) FindByCode(_ context.Context, code string) (*models.RedeemCode, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	needle := strings.ToUpper(code)
	for _, c := range r.store.codes {
		if c.Code == needle {
			clone := *c
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}
