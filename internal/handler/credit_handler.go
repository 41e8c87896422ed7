package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecocity/waste-api/internal/models"
	"github.com/ecocity/waste-api/internal/service"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
	"github.com/ecocity/waste-api/pkg/response"
)

// CreditHandler wires HTTP endpoints to the eco-credit ledger.
type CreditHandler struct {
	service *service.CreditService
}

// NewCreditHandler creates a new handler.
func NewCreditHandler(svc *service.CreditService) *CreditHandler {
	return &CreditHandler{service: svc}
}

// ListUsers godoc
// @Summary List citizen profiles
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *CreditHandler) ListUsers(c *gin.Context) {
	profiles, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profiles, nil)
}

// Balance godoc
// @Summary Read a user's credit balance
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/credits [get]
func (h *CreditHandler) Balance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.Balance(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"user_id": profile.UserID, "credits": profile.Credits}, nil)
}

// Grant godoc
// @Summary Grant credits to a user
// @Tags Credits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Param payload body models.GrantCreditsRequest true "Grant payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /users/{id}/credits [post]
func (h *CreditHandler) Grant(c *gin.Context) {
	var req models.GrantCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grant payload"))
		return
	}

	profile, err := h.service.Grant(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// Redeem godoc
// @Summary Redeem credits for a reward code
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /credits/redeem [post]
func (h *CreditHandler) Redeem(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.Redeem(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// UseCode godoc
// @Summary Mark a reward code as used
// @Description Called when the reward is handed out at the counter.
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Param code path string true "Reward code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /redeem-codes/{code}/use [put]
func (h *CreditHandler) UseCode(c *gin.Context) {
	code, err := h.service.UseCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, code, nil)
}

// ListCodes godoc
// @Summary List redeem codes
// @Description Admins see all codes; citizens only their own.
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /redeem-codes [get]
func (h *CreditHandler) ListCodes(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	codes, err := h.service.ListCodes(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, codes, nil)
}
