// Package oracle wraps the language-model classifier behind a strict output
// contract with deterministic fallbacks. Callers never see oracle errors;
// they see either a parsed analysis or the documented degraded-mode default.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"leadrunner/platform/apperr"
	"leadrunner/platform/config"
)

// Completer is the single-shot completion contract consumed by the Adapter.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a completion client from oracle configuration.
func NewClient(cfg config.OracleConfig) *Client {
	baseURL := cfg.GetOracleBaseURL()
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.GetOracleModel()
	if model == "" {
		model = "gpt-4"
	}
	return &Client{
		apiKey:  cfg.GetOracleAPIKey(),
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// Complete sends one chat-completion request and returns the raw assistant
// text. One attempt, no retry; the caller's polling cadence is the retry loop.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	payload := map[string]interface{}{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	jsonBody, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", apperr.Oracle("build completion request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", apperr.Oracle("completion request", err)
	}
	defer resp.Body.Close()

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperr.Oracle("decode completion response", err)
	}
	if result.Error != nil {
		return "", apperr.Oracle("completion request", fmt.Errorf("api error: %v", result.Error))
	}
	if len(result.Choices) == 0 {
		return "", apperr.Oracle("completion request", fmt.Errorf("empty choices"))
	}

	return result.Choices[0].Message.Content, nil
}

var _ Completer = (*Client)(nil)
