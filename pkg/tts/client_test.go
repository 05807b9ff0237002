package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req synthesizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pack Math and Art", req.Text)
		assert.Equal(t, "es-US", req.Language)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL, APIKey: "key", Language: "es-US"})
	audio, mimeType, err := client.Synthesize(context.Background(), "pack Math and Art")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), audio)
	assert.Equal(t, "audio/mpeg", mimeType)
}

func TestSynthesizeServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Config{Endpoint: server.URL})
	_, _, err := client.Synthesize(context.Background(), "hello")
	require.Error(t, err)
}

func TestSynthesizeMissingEndpoint(t *testing.T) {
	_, _, err := New(Config{}).Synthesize(context.Background(), "hello")
	require.Error(t, err)
}
