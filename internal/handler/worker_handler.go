package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecocity/waste-api/internal/models"
	"github.com/ecocity/waste-api/internal/service"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
	"github.com/ecocity/waste-api/pkg/response"
)

// WorkerHandler wires HTTP endpoints to the collector directory.
type WorkerHandler struct {
	service *service.WorkerService
}

// NewWorkerHandler creates a new handler.
func NewWorkerHandler(svc *service.WorkerService) *WorkerHandler {
	return &WorkerHandler{service: svc}
}

// List godoc
// @Summary List collectors with per-material prices
// @Tags Workers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /workers [get]
func (h *WorkerHandler) List(c *gin.Context) {
	workers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, workers, nil)
}

// Create godoc
// @Summary Add a collector to the directory
// @Tags Workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateWorkerRequest true "Worker payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /workers [post]
func (h *WorkerHandler) Create(c *gin.Context) {
	var req models.CreateWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid worker payload"))
		return
	}

	worker, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, worker)
}
