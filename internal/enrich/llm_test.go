package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usefultools/curator/internal/config"
)

func llmConfig() config.OpenAIConfig {
	return config.OpenAIConfig{
		Endpoint: "https://api.openai.com/v1/chat/completions",
		Model:    "gpt-4o-mini",
		APIKey:   "test-key",
	}
}

func completionResponse(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestLLMClientParsesStructuredReply(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req struct {
			Model string `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)

		fmt.Fprint(w, completionResponse(`{"summary": "Slices JSON.", "highlights": ["fast"], "best_for": "pipelines", "tags": ["dev/cli"]}`))
	}))
	defer srv.Close()

	c := NewLLMClient(llmConfig(), nil)
	require.NotNil(t, c)
	c.SetEndpoint(srv.URL)

	partial, ok := c.Summarize(context.Background(), "https://example.com/tool", "Tool", "desc")
	require.True(t, ok)
	assert.Equal(t, "Slices JSON.", partial.Summary)
	assert.Equal(t, []string{"fast"}, partial.Highlights)
	assert.Equal(t, "pipelines", partial.BestFor)
	assert.Equal(t, []string{"dev/cli"}, partial.Tags)
}

func TestLLMClientToleratesCodeFences(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, completionResponse("```json\n{\"summary\": \"Fenced.\"}\n```"))
	}))
	defer srv.Close()

	c := NewLLMClient(llmConfig(), nil)
	c.SetEndpoint(srv.URL)

	partial, ok := c.Summarize(context.Background(), "u", "t", "d")
	require.True(t, ok)
	assert.Equal(t, "Fenced.", partial.Summary)
}

func TestLLMClientDegradesGracefully(t *testing.T) {
	t.Parallel()

	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewLLMClient(llmConfig(), nil)
		c.SetEndpoint(srv.URL)

		_, ok := c.Summarize(context.Background(), "u", "t", "d")
		assert.False(t, ok)
	})

	t.Run("unparseable completion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, completionResponse("sorry, I cannot do that"))
		}))
		defer srv.Close()

		c := NewLLMClient(llmConfig(), nil)
		c.SetEndpoint(srv.URL)

		_, ok := c.Summarize(context.Background(), "u", "t", "d")
		assert.False(t, ok)
	})

	t.Run("nil client without api key", func(t *testing.T) {
		c := NewLLMClient(config.OpenAIConfig{}, nil)
		assert.Nil(t, c)
		_, ok := c.Summarize(context.Background(), "u", "t", "d")
		assert.False(t, ok)
	})
}
