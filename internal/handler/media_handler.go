package handler

import (
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
	"github.com/mochila-app/backpack-api/pkg/response"
	"github.com/mochila-app/backpack-api/pkg/storage"
)

// MediaHandler serves narration audio through signed, expiring tokens. No
// session is required: the token itself is the authorization.
type MediaHandler struct {
	signer *storage.SignedURLSigner
	store  *storage.LocalStorage
	logger *zap.Logger
}

// NewMediaHandler creates a new handler.
func NewMediaHandler(signer *storage.SignedURLSigner, store *storage.LocalStorage, logger *zap.Logger) *MediaHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaHandler{signer: signer, store: store, logger: logger}
}

// Download godoc
// @Summary Download narration audio
// @Description Stream a media file referenced by a signed token
// @Tags Media
// @Produce octet-stream
// @Param token path string true "Signed media token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /media/{token} [get]
func (h *MediaHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"), false)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired media token"))
		return
	}

	file, err := h.store.Open(relPath)
	if err != nil {
		h.logger.Warn("media file missing", zap.String("path", relPath), zap.Error(err))
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "media file not found"))
		return
	}
	defer file.Close()

	c.Header("Content-Type", mediaContentType(relPath))
	c.Header("Cache-Control", "private, max-age=0")
	c.File(file.Name())
}

func mediaContentType(path string) string {
	switch filepath.Ext(path) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
