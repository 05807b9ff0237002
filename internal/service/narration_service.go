package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type speechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, string, error)
}

type audioStore interface {
	Save(filename string, data []byte) (string, error)
}

type mediaSigner interface {
	Generate(fileID, relPath string) (string, time.Time, error)
}

type adviceResolver interface {
	Resolve(ctx context.Context, ownerID, profileID string, at time.Time) (*models.AdviceResult, error)
}

// Narration is a spoken rendition of the packing advice.
type Narration struct {
	Text      string               `json:"text"`
	MediaURL  string               `json:"media_url"`
	ExpiresAt time.Time            `json:"expires_at"`
	Advice    *models.AdviceResult `json:"advice"`
}

// NarrationService renders packing advice as speech audio served through
// signed media URLs.
type NarrationService struct {
	advice      adviceResolver
	synthesizer speechSynthesizer
	store       audioStore
	signer      mediaSigner
	enabled     bool
	logger      *zap.Logger
}

// NewNarrationService constructs a NarrationService instance.
func NewNarrationService(advice adviceResolver, synthesizer speechSynthesizer, store audioStore, signer mediaSigner, enabled bool, logger *zap.Logger) *NarrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NarrationService{
		advice:      advice,
		synthesizer: synthesizer,
		store:       store,
		signer:      signer,
		enabled:     enabled,
		logger:      logger,
	}
}

// Narrate resolves the advice for a profile, synthesizes it as audio and
// returns a short-lived signed URL for the file.
func (s *NarrationService) Narrate(ctx context.Context, ownerID, profileID string, at time.Time) (*Narration, error) {
	if !s.enabled || s.synthesizer == nil {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "narration is disabled")
	}

	advice, err := s.advice.Resolve(ctx, ownerID, profileID, at)
	if err != nil {
		return nil, err
	}

	text := SpeechText(*advice)
	audio, mimeType, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		s.logger.Warn("speech synthesis failed", zap.String("profile_id", profileID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrNarrationFailed.Code, appErrors.ErrNarrationFailed.Status, "speech synthesis failed")
	}

	filename := fmt.Sprintf("%s%s", uuid.NewString(), extensionForMIME(mimeType))
	if _, err := s.store.Save(filename, audio); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store narration audio")
	}

	token, expiresAt, err := s.signer.Generate(profileID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign media URL")
	}

	return &Narration{
		Text:      text,
		MediaURL:  "/media/" + token,
		ExpiresAt: expiresAt,
		Advice:    advice,
	}, nil
}

// SpeechText phrases an advice result as a single spoken sentence.
func SpeechText(advice models.AdviceResult) string {
	name := advice.ProfileName
	if name == "" {
		name = "your child"
	}
	switch {
	case advice.IsVacation:
		return fmt.Sprintf("%s is on vacation %s, no backpack needed.", name, advice.Label)
	case !advice.Configured || len(advice.Notebooks) == 0:
		return fmt.Sprintf("%s has no notebooks scheduled for %s.", name, advice.Label)
	case len(advice.Notebooks) == 1:
		return fmt.Sprintf("For %s, %s needs the %s notebook.", advice.Label, name, advice.Notebooks[0])
	default:
		last := advice.Notebooks[len(advice.Notebooks)-1]
		rest := strings.Join(advice.Notebooks[:len(advice.Notebooks)-1], ", ")
		return fmt.Sprintf("For %s, %s needs the %s and %s notebooks.", advice.Label, name, rest, last)
	}
}

func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "audio/mpeg":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	default:
		return ".bin"
	}
}
