package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/models"
	"github.com/ecocity/waste-api/internal/repository"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
)

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
const codeSuffixLen = 8

type creditProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
	AddCredits(ctx context.Context, userID string, delta int) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
}

type creditRedeemRepository interface {
	Redeem(ctx context.Context, userID string, cost int, code string) (*models.RedeemCode, error)
	List(ctx context.Context, userID *string) ([]models.RedeemCode, error)
	FindByCode(ctx context.Context, code string) (*models.RedeemCode, error)
	MarkRedeemed(ctx context.Context, code string) (*models.RedeemCode, error)
}

// CreditConfig tunes the eco-credit ledger.
type CreditConfig struct {
	RedeemCost int
	CodePrefix string
}

// CreditService manages balances, grants and reward code redemption.
type CreditService struct {
	profiles  creditProfileRepository
	codes     creditRedeemRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    CreditConfig
}

// NewCreditService constructs a CreditService instance.
func NewCreditService(profiles creditProfileRepository, codes creditRedeemRepository, validate *validator.Validate, logger *zap.Logger, config CreditConfig) *CreditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CreditService{profiles: profiles, codes: codes, validator: validate, logger: logger, config: config}
}

// ListUsers returns the citizen profiles for the admin directory.
func (s *CreditService) ListUsers(ctx context.Context) ([]models.Profile, error) {
	role := models.RoleUser
	profiles, err := s.profiles.List(ctx, models.ProfileFilter{Role: &role})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return profiles, nil
}

// Balance returns a user's current credit balance. Citizens may only read
// their own balance.
func (s *CreditService) Balance(ctx context.Context, claims *models.JWTClaims, userID string) (*models.Profile, error) {
	if claims.Role != models.RoleAdmin && claims.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "balance belongs to another user")
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// Grant applies an additive credit delta to a user's balance. The amount is
// bounded server-side to 1..1000 per grant.
func (s *CreditService) Grant(ctx context.Context, userID string, req models.GrantCreditsRequest) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "credits must be between 1 and 1000")
	}

	profile, err := s.profiles.AddCredits(ctx, userID, req.Credits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grant credits")
	}

	s.logger.Info("credits granted",
		zap.String("user_id", userID),
		zap.Int("credits", req.Credits))
	return profile, nil
}

// Redeem converts RedeemCost credits into a reward code. Decrement and mint
// happen in one transaction, so a balance below cost leaves no partial state.
func (s *CreditService) Redeem(ctx context.Context, userID string) (*models.RedeemResponse, error) {
	code, err := s.mintCode()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mint code")
	}

	minted, err := s.codes.Redeem(ctx, userID, s.config.RedeemCost, code)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			return nil, appErrors.Clone(appErrors.ErrInsufficientCredits,
				fmt.Sprintf("redeeming requires at least %d credits", s.config.RedeemCost))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to redeem credits")
	}

	s.logger.Info("credits redeemed",
		zap.String("user_id", userID),
		zap.String("code", minted.Code))

	// The decrement is already committed; a failed balance re-read must not
	// turn a successful redemption into an error.
	res := &models.RedeemResponse{Code: *minted}
	if profile, err := s.profiles.FindByUserID(ctx, userID); err == nil {
		res.Credits = profile.Credits
	} else {
		s.logger.Warn("failed to load balance after redeem",
			zap.String("user_id", userID),
			zap.Error(err))
	}
	return res, nil
}

// UseCode marks a reward code as spent when the reward is handed out. A
// spent code is rejected with a conflict, an unknown one with not found.
func (s *CreditService) UseCode(ctx context.Context, code string) (*models.RedeemCode, error) {
	used, err := s.codes.MarkRedeemed(ctx, code)
	if err == nil {
		s.logger.Info("redeem code used", zap.String("code", used.Code))
		return used, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to use redeem code")
	}

	if _, lookupErr := s.codes.FindByCode(ctx, code); lookupErr == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "code already used")
	} else if !errors.Is(lookupErr, sql.ErrNoRows) {
		return nil, appErrors.Wrap(lookupErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load redeem code")
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "code not found")
}

// ListCodes returns redeem codes visible to the session: admins see
// everything, citizens only their own.
func (s *CreditService) ListCodes(ctx context.Context, claims *models.JWTClaims) ([]models.RedeemCode, error) {
	var scope *string
	if claims.Role != models.RoleAdmin {
		scope = &claims.UserID
	}

	codes, err := s.codes.List(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list redeem codes")
	}
	return codes, nil
}

// mintCode draws an 8-character base-36 suffix from crypto/rand.
func (s *CreditService) mintCode() (string, error) {
	suffix := make([]byte, codeSuffixLen)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", s.config.CodePrefix, suffix), nil
}
