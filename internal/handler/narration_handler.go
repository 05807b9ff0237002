package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mochila-app/backpack-api/internal/service"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
	"github.com/mochila-app/backpack-api/pkg/response"
)

// NarrationHandler wires the spoken advice endpoint.
type NarrationHandler struct {
	service *service.NarrationService
	metrics *service.MetricsService
}

// NewNarrationHandler creates a new handler.
func NewNarrationHandler(svc *service.NarrationService, metrics *service.MetricsService) *NarrationHandler {
	return &NarrationHandler{service: svc, metrics: metrics}
}

// Narrate godoc
// @Summary Spoken packing advice
// @Description Synthesize the packing advice as audio and return a signed media URL
// @Tags Advice
// @Produce json
// @Param id path string true "Profile ID"
// @Param at query string false "Resolution instant (RFC 3339); defaults to now"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 501 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/{id}/advice/narration [post]
func (h *NarrationHandler) Narrate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var at time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid at parameter, expected RFC 3339"))
			return
		}
		at = parsed
	}

	start := time.Now()
	narration, err := h.service.Narrate(c.Request.Context(), claims.UserID, c.Param("id"), at)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveSpeech(time.Since(start))

	response.JSON(c, http.StatusOK, narration, nil)
}
