package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/usefultools/curator/internal/config"
)

const systemPrompt = `You summarize developer tools for a curated channel.
Given a tool's URL, title, and description, reply with a JSON object:
{"summary": one sentence, "highlights": up to 3 short strings,
"best_for": short phrase, "tags": up to 3 "category/subcategory" strings}.
Reply with JSON only.`

// LLMClient asks an OpenAI-compatible chat completions API for a structured
// partial record. It is an enrichment source: any failure degrades to
// nothing rather than erroring the run.
type LLMClient struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
	logger   *zap.Logger
}

// NewLLMClient builds a client from configuration. It returns nil when no
// API key is configured; callers treat a nil client as "no LLM enrichment".
func NewLLMClient(cfg config.OpenAIConfig, logger *zap.Logger) *LLMClient {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMClient{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 20 * time.Second},
		logger:   logger,
	}
}

// SetEndpoint overrides the API endpoint; tests point it at a local server.
func (c *LLMClient) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// Summarize returns the model's partial record for the tool, or ok=false on
// any failure (network, non-success status, unparseable payload).
func (c *LLMClient) Summarize(ctx context.Context, toolURL, title, description string) (Partial, bool) {
	if c == nil {
		return Partial{}, false
	}
	partial, err := c.summarize(ctx, toolURL, title, description)
	if err != nil {
		c.logger.Warn("llm summarization unavailable",
			zap.String("url", toolURL),
			zap.Error(err),
		)
		return Partial{}, false
	}
	return partial, !partial.IsZero()
}

func (c *LLMClient) summarize(ctx context.Context, toolURL, title, description string) (Partial, error) {
	user := fmt.Sprintf("URL: %s\nTitle: %s\nDescription: %s", toolURL, title, description)
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": user},
		},
	})
	if err != nil {
		return Partial{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Partial{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Partial{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Partial{}, fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return Partial{}, fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Partial{}, fmt.Errorf("empty completion")
	}

	return parseCompletion(completion.Choices[0].Message.Content)
}

// parseCompletion tolerates models that wrap the JSON in a code fence.
func parseCompletion(content string) (Partial, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed struct {
		Summary    string   `json:"summary"`
		Highlights []string `json:"highlights"`
		BestFor    string   `json:"best_for"`
		Tags       []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return Partial{}, fmt.Errorf("parse completion: %w", err)
	}
	return Partial{
		Summary:    parsed.Summary,
		Highlights: parsed.Highlights,
		BestFor:    parsed.BestFor,
		Tags:       parsed.Tags,
	}, nil
}
