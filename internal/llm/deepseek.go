// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/script-engine/pkg/types"
)

// defaultDeepSeekBaseURL is the DeepSeek API root. The backend speaks
// the OpenAI chat-completion dialect, so any compatible endpoint works
// through BaseURL.
const defaultDeepSeekBaseURL = "https://api.deepseek.com"

// DeepSeekBackend calls an OpenAI-style chat-completion API. Sampling
// controls ride flat on the request body (max_tokens, temperature).
type DeepSeekBackend struct {
	cfg    types.AIConfig
	client *http.Client
}

// NewDeepSeek builds a DeepSeek backend from config.
func NewDeepSeek(cfg types.AIConfig) *DeepSeekBackend {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultDeepSeekBaseURL
	}
	return &DeepSeekBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate issues one chat completion with the prompt as a single user
// message and returns the first choice's content.
func (b *DeepSeekBackend) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       b.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := b.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling DeepSeek API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("DeepSeek API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding DeepSeek response: %w", err)
	}

	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("DeepSeek API returned no choices")
	}

	return cResp.Choices[0].Message.Content, nil
}
