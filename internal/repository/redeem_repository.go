package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ecocity/waste-api/internal/models"
)

// ErrInsufficientCredits is returned when a redemption finds a balance below
// the redemption cost at commit time.
var ErrInsufficientCredits = errors.New("insufficient credits")

// RedeemRepository provides database access for the redeem-code ledger.
type RedeemRepository struct {
	db *sqlx.DB
}

// NewRedeemRepository creates a new instance of RedeemRepository.
func NewRedeemRepository(db *sqlx.DB) *RedeemRepository {
	return &RedeemRepository{db: db}
}

const redeemColumns = `id, code, user_id, redeemed, created_at`

// Redeem decrements the balance and mints the code inside one transaction so
// both effects commit or neither does. The decrement is conditional on
// credits >= cost; zero rows affected means the guard failed and the whole
// transaction rolls back with ErrInsufficientCredits. Concurrent redemptions
// serialize on the profile row, so the loser always sees the guard.
func (r *RedeemRepository) Redeem(ctx context.Context, userID string, cost int, code string) (*models.RedeemCode, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const decrement = `UPDATE profiles SET credits = credits - $2, updated_at = $3 WHERE user_id = $1 AND credits >= $2`
	result, err := tx.ExecContext(ctx, decrement, userID, cost, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("decrement credits: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("decrement credits rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrInsufficientCredits
	}

	redeemCode := &models.RedeemCode{
		ID:        uuid.NewString(),
		Code:      code,
		UserID:    userID,
		Redeemed:  false,
		CreatedAt: time.Now().UTC(),
	}
	const insert = `INSERT INTO redeem_codes (id, code, user_id, redeemed, created_at)
		VALUES (:id, :code, :user_id, :redeemed, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, redeemCode); err != nil {
		return nil, fmt.Errorf("insert redeem code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit redeem tx: %w", err)
	}
	return redeemCode, nil
}

// List returns redeem codes, optionally scoped to one user, newest first.
func (r *RedeemRepository) List(ctx context.Context, userID *string) ([]models.RedeemCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM redeem_codes`, redeemColumns)
	var args []interface{}
	if userID != nil {
		query += " WHERE user_id = $1"
		args = append(args, *userID)
	}
	query += " ORDER BY created_at DESC"

	var codes []models.RedeemCode
	if err := r.db.SelectContext(ctx, &codes, query, args...); err != nil {
		return nil, fmt.Errorf("list redeem codes: %w", err)
	}
	return codes, nil
}

// MarkRedeemed flips an unused code to redeemed. The update is conditional on
// redeemed = FALSE, so an already-used code reports sql.ErrNoRows and the
// caller can look the row up to tell spent from unknown.
func (r *RedeemRepository) MarkRedeemed(ctx context.Context, code string) (*models.RedeemCode, error) {
	query := fmt.Sprintf(`UPDATE redeem_codes SET redeemed = TRUE WHERE code = $1 AND redeemed = FALSE RETURNING %s`, redeemColumns)
	var rc models.RedeemCode
	if err := r.db.GetContext(ctx, &rc, query, strings.ToUpper(code)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("mark redeem code used: %w", err)
	}
	return &rc, nil
}

// FindByCode returns a code row by its token value.
func (r *RedeemRepository) FindByCode(ctx context.Context, code string) (*models.RedeemCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM redeem_codes WHERE code = $1 LIMIT 1`, redeemColumns)
	var rc models.RedeemCode
	if err := r.db.GetContext(ctx, &rc, query, strings.ToUpper(code)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find redeem code: %w", err)
	}
	return &rc, nil
}
