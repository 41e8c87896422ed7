package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/ecocity/waste-api/pkg/errors"
	"github.com/ecocity/waste-api/pkg/response"
	"github.com/ecocity/waste-api/pkg/storage"
)

// UploadHandler stores complaint images and returns their public URL.
type UploadHandler struct {
	uploads   *storage.Uploads
	publicURL string
}

// NewUploadHandler creates a new handler.
func NewUploadHandler(uploads *storage.Uploads, publicURL string) *UploadHandler {
	if publicURL == "" {
		publicURL = "/uploads"
	}
	return &UploadHandler{uploads: uploads, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload godoc
// @Summary Store a complaint image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing image file"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close() //nolint:errcheck

	filename := uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
	stored, err := h.uploads.SaveStream(filename, src)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload"))
		return
	}

	response.Created(c, gin.H{"url": fmt.Sprintf("%s/%s", h.publicURL, stored)})
}
