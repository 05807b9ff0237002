package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mochila-app/backpack-api/internal/service"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
	"github.com/mochila-app/backpack-api/pkg/response"
)

// ImportHandler wires the photo schedule import endpoint.
type ImportHandler struct {
	service *service.ImportService
	metrics *service.MetricsService
}

// NewImportHandler creates a new handler.
func NewImportHandler(svc *service.ImportService, metrics *service.MetricsService) *ImportHandler {
	return &ImportHandler{service: svc, metrics: metrics}
}

// Import godoc
// @Summary Import schedule from photo
// @Description Extract a weekly schedule from a timetable photo and merge it into the stored one
// @Tags Schedule
// @Accept mpfd
// @Produce json
// @Param id path string true "Profile ID"
// @Param image formData file true "Timetable photo"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 501 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/{id}/schedule/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open uploaded image"))
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded image"))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	start := time.Now()
	result, err := h.service.Import(c.Request.Context(), claims.UserID, c.Param("id"), image, mimeType)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveExtraction(time.Since(start))

	response.JSON(c, http.StatusOK, result, nil)
}
