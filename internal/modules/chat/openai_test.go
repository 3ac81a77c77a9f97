package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenAICompleterSendsRequest(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Take it with food."}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-3.5-turbo"}, zap.NewNop())
	reply, err := c.Complete(context.Background(), SystemPrompt, "How do I take aspirin?")
	require.NoError(t, err)
	assert.Equal(t, "Take it with food.", reply)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: SystemPrompt}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "How do I take aspirin?"}, got.Messages[1])
}

func TestOpenAICompleterErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusUnauthorized, `{"error":{"message":"bad key","type":"auth"}}`, "bad key"},
		{"opaque error", http.StatusBadGateway, `upstream`, "502"},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrEmptyReply.Error()},
		{"malformed", http.StatusOK, `{`, "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOpenAICompleter(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"}, zap.NewNop())
			_, err := c.Complete(context.Background(), "s", "u")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestOpenAICompleterTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewOpenAICompleter(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m", Timeout: 20 * time.Millisecond}, zap.NewNop())
	start := time.Now()
	_, err := c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestOpenAICompleterWithoutKey(t *testing.T) {
	c := NewOpenAICompleter(OpenAIConfig{Model: "m"}, zap.NewNop())
	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenAICompleterOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOpenAICompleter(OpenAIConfig{APIKey: "k", BaseURL: srv.URL, Model: "m"}, zap.NewNop())
	for i := 0; i < 5; i++ {
		_, err := c.Complete(context.Background(), "s", "u")
		require.Error(t, err)
	}

	_, err := c.Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), calls.Load())
}
