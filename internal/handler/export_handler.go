package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mochila-app/backpack-api/internal/service"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
	"github.com/mochila-app/backpack-api/pkg/response"
)

// ExportHandler wires the schedule download endpoint.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Export godoc
// @Summary Export a schedule
// @Description Download the weekly schedule as CSV or PDF
// @Tags Schedule
// @Produce octet-stream
// @Param id path string true "Profile ID"
// @Param format query string false "Export format (csv or pdf)" default(pdf)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/{id}/schedule/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := c.DefaultQuery("format", "pdf")
	file, err := h.service.Export(c.Request.Context(), claims.UserID, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
