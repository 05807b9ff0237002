package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mochila-app/backpack-api/internal/models"
	"github.com/mochila-app/backpack-api/internal/service"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
	"github.com/mochila-app/backpack-api/pkg/response"
)

type adviceService interface {
	Resolve(ctx context.Context, ownerID, profileID string, at time.Time) (*models.AdviceResult, error)
}

// AdviceHandler wires the packing advice endpoint.
type AdviceHandler struct {
	service adviceService
	metrics *service.MetricsService
}

// NewAdviceHandler creates a new handler.
func NewAdviceHandler(svc adviceService, metrics *service.MetricsService) *AdviceHandler {
	return &AdviceHandler{service: svc, metrics: metrics}
}

// Get godoc
// @Summary Packing advice
// @Description Resolve which notebooks to pack for the next relevant school day
// @Tags Advice
// @Produce json
// @Param id path string true "Profile ID"
// @Param at query string false "Resolution instant (RFC 3339); defaults to now"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/{id}/advice [get]
func (h *AdviceHandler) Get(c *gin.Context) {
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

	result, err := h.service.Resolve(c.Request.Context(), claims.UserID, c.Param("id"), at)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordAdvice(string(result.Label), result.IsVacation)
	response.JSON(c, http.StatusOK, result, nil)
}
