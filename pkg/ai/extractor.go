// Package ai wraps the vision model call that turns a photographed weekly
// schedule into a weekday-to-subjects mapping.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/models"
)

const extractPrompt = `You are an expert schedule organizer. Analyze the attached photo of a student's weekly class schedule and extract the academic subjects for each day of the week.

Rules:
1. Ignore non-academic rows such as breakfast, breaks, lunch, and dismissal. Only extract actual school subjects.
2. Format the subjects for each day as a single comma-separated string.
3. If a day has no subjects, use an empty string for that day.

Respond with a single JSON object whose keys are exactly "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday" and "Sunday", each mapped to the comma-separated subject string.`

// Config holds settings for the OpenAI-compatible vision endpoint.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Extractor calls a multimodal LLM to read printed schedules.
type Extractor struct {
	llm     *openai.LLM
	timeout time.Duration
	logger  *zap.Logger
}

// NewExtractor builds the vision client. The base URL is optional and
// defaults to the OpenAI API, which lets deployments point at any
// OpenAI-compatible gateway.
func NewExtractor(cfg Config, logger *zap.Logger) (*Extractor, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ai extractor requires a model")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init vision llm: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	return &Extractor{llm: llm, timeout: timeout, logger: logger}, nil
}

// ExtractSchedule sends the image to the vision model and parses the JSON
// reply into a normalized weekly schedule.
func (e *Extractor) ExtractSchedule(ctx context.Context, image []byte, mimeType string) (models.WeeklySchedule, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(extractPrompt),
			},
		},
	}

	start := time.Now()
	resp, err := e.llm.GenerateContent(ctx, content, llms.WithJSONMode())
	if err != nil {
		return nil, fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("vision completion returned no choices")
	}

	schedule, err := parseScheduleJSON(resp.Choices[0].Content)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("schedule extracted from image",
		zap.Duration("duration", time.Since(start)),
		zap.Int("days", len(schedule)),
	)
	return schedule, nil
}

func parseScheduleJSON(raw string) (models.WeeklySchedule, error) {
	trimmed := strings.TrimSpace(raw)
	// Some models wrap JSON replies in a markdown fence despite JSON mode.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var parsed map[string]string
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return nil, fmt.Errorf("parse vision reply: %w", err)
	}
	return models.WeeklySchedule(parsed).Normalized(), nil
}
