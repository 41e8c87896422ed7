package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/middleware"
	"github.com/ecocity/waste-api/internal/models"
	"github.com/ecocity/waste-api/internal/repository"
	"github.com/ecocity/waste-api/internal/service"
)

type ledgerStub struct {
	balances map[string]int
	codes    []models.RedeemCode
}

func (m *ledgerStub) FindByUserID(_ context.Context, userID string) (*models.Profile, error) {
	credits, ok := m.balances[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Profile{ID: "p-" + userID, UserID: userID, Credits: credits, Role: models.RoleUser}, nil
}

func (m *ledgerStub) AddCredits(_ context.Context, userID string, delta int) (*models.Profile, error) {
	if _, ok := m.balances[userID]; !ok {
		return nil, sql.ErrNoRows
	}
	m.balances[userID] += delta
	return &models.Profile{UserID: userID, Credits: m.balances[userID], Role: models.RoleUser}, nil
}

func (m *ledgerStub) List(_ context.Context, _ models.ProfileFilter) ([]models.Profile, error) {
	var profiles []models.Profile
	for userID, credits := range m.balances {
		profiles = append(profiles, models.Profile{UserID: userID, Credits: credits, Role: models.RoleUser})
	}
	return profiles, nil
}

func (m *ledgerStub) Redeem(_ context.Context, userID string, cost int, code string) (*models.RedeemCode, error) {
	if m.balances[userID] < cost {
		return nil, repository.ErrInsufficientCredits
	}
	m.balances[userID] -= cost
	minted := models.RedeemCode{ID: code, Code: code, UserID: userID, CreatedAt: time.Now()}
	m.codes = append(m.codes, minted)
	return &minted, nil
}

func (m *ledgerStub) ListRedeemed(_ context.Context, userID *string) ([]models.RedeemCode, error) {
	var list []models.RedeemCode
	for _, code := range m.codes {
		if userID != nil && code.UserID != *userID {
			continue
		}
		list = append(list, code)
	}
	return list, nil
}

// codeLedgerStub adapts ledgerStub to the redeem repository shape, whose List
// scopes by user id rather than profile filter.
type codeLedgerStub struct{ *ledgerStub }

func (m codeLedgerStub) List(ctx context.Context, userID *string) ([]models.RedeemCode, error) {
	return m.ListRedeemed(ctx, userID)
}

func (m codeLedgerStub) FindByCode(_ context.Context, code string) (*models.RedeemCode, error) {
	for i := range m.codes {
		if m.codes[i].Code == code {
			return &m.codes[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m codeLedgerStub) MarkRedeemed(_ context.Context, code string) (*models.RedeemCode, error) {
	for i := range m.codes {
		if m.codes[i].Code == code && !m.codes[i].Redeemed {
			m.codes[i].Redeemed = true
			return &m.codes[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func newCreditHandler(ledger *ledgerStub) *CreditHandler {
	svc := service.NewCreditService(ledger, codeLedgerStub{ledger}, validator.New(), zap.NewNop(), service.CreditConfig{
		RedeemCost: 100,
		CodePrefix: "ECO",
	})
	return NewCreditHandler(svc)
}

func TestCreditHandlerRedeemMintsCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := &ledgerStub{balances: map[string]int{"u1": 150}}
	handler := newCreditHandler(ledger)

	c, w := newGinContext(http.MethodPost, "/api/credits/redeem", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleUser})

	handler.Redeem(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.RedeemResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Regexp(t, regexp.MustCompile(`^ECO-[0-9A-Z]{8}$`), envelope.Data.Code.Code)
	assert.Equal(t, 50, envelope.Data.Credits)
}

func TestCreditHandlerRedeemInsufficientBalance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := &ledgerStub{balances: map[string]int{"u1": 99}}
	handler := newCreditHandler(ledger)

	c, w := newGinContext(http.MethodPost, "/api/credits/redeem", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleUser})

	handler.Redeem(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_CREDITS")
	assert.Equal(t, 99, ledger.balances["u1"])
}

func TestCreditHandlerGrantOutOfBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := &ledgerStub{balances: map[string]int{"u1": 0}}
	handler := newCreditHandler(ledger)

	payload, _ := json.Marshal(models.GrantCreditsRequest{Credits: 1001})
	c, w := newGinContext(http.MethodPost, "/api/users/u1/credits", payload)
	c.Params = gin.Params{{Key: "id", Value: "u1"}}

	handler.Grant(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, ledger.balances["u1"])
}

func TestCreditHandlerBalanceForbiddenForOthers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := &ledgerStub{balances: map[string]int{"u1": 40, "u2": 60}}
	handler := newCreditHandler(ledger)

	c, w := newGinContext(http.MethodGet, "/api/users/u2/credits", nil)
	c.Params = gin.Params{{Key: "id", Value: "u2"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleUser})

	handler.Balance(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
