// Package tts is a thin HTTP client for the audio narration gateway: text
// in, audio bytes out.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the narration endpoint settings.
type Config struct {
	Endpoint string
	APIKey   string
	Voice    string
	Language string
	Timeout  time.Duration
}

// Client synthesizes speech through a remote text-to-speech service.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New constructs a narration client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type synthesizeRequest struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// Synthesize converts text into audio. It returns the audio bytes and the
// MIME type reported by the service.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	if c.cfg.Endpoint == "" {
		return nil, "", fmt.Errorf("tts endpoint not configured")
	}

	payload, err := json.Marshal(synthesizeRequest{
		Text:     text,
		Voice:    c.cfg.Voice,
		Language: c.cfg.Language,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("call tts service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("tts service returned %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read tts response: %w", err)
	}
	if len(audio) == 0 {
		return nil, "", fmt.Errorf("tts service returned empty audio")
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	return audio, mimeType, nil
}
