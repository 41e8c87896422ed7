package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ecocity/waste-api/internal/service"
	"github.com/ecocity/waste-api/pkg/response"
)

// StatsHandler wires HTTP endpoints to the admin analytics service.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler creates a new handler.
func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Overview godoc
// @Summary Admin analytics snapshot
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Param refresh query boolean false "Drop the cached snapshot and recompute"
// @Success 200 {object} response.Envelope
// @Router /stats/overview [get]
func (h *StatsHandler) Overview(c *gin.Context) {
	refresh := c.Query("refresh") == "true"
	overview, err := h.service.Overview(c.Request.Context(), refresh)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, overview, nil)
}

// GreenChampion godoc
// @Summary Citizen with the maximal credit balance
// @Tags Stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /green-champion [get]
func (h *StatsHandler) GreenChampion(c *gin.Context) {
	champion, err := h.service.GreenChampion(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, champion, nil)
}

// Export godoc
// @Summary Export the complaint roster
// @Tags Stats
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /stats/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")

	payload, contentType, err := h.service.ExportComplaints(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	filename := fmt.Sprintf("complaints-%s.%s", time.Now().UTC().Format("20060102-150405"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
