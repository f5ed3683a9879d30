package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"churchhelper/internal/config"
	"churchhelper/internal/lib/sl"
)

// Completer is one external text-generation provider. Complete returns the
// produced text; any transport or API failure surfaces as an error and is
// treated by callers as "no result".
type Completer interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// LLMClient calls an OpenAI-compatible chat completions endpoint.
type LLMClient struct {
	name       string
	apiKey     string
	baseURL    string
	model      string
	log        *slog.Logger
	httpClient *http.Client
}

// NewGroqClient builds the primary provider client. Returns nil when no
// credential is configured.
func NewGroqClient(conf *config.Config, log *slog.Logger) *LLMClient {
	if conf.AI.GroqApiKey == "" {
		return nil
	}
	return newLLMClient("groq", conf.AI.GroqApiKey, conf.AI.GroqURL, conf.AI.GroqModel, log)
}

// NewOpenAIClient builds the secondary provider client. Returns nil when no
// credential is configured.
func NewOpenAIClient(conf *config.Config, log *slog.Logger) *LLMClient {
	if conf.AI.OpenAIApiKey == "" {
		return nil
	}
	return newLLMClient("openai", conf.AI.OpenAIApiKey, conf.AI.OpenAIURL, conf.AI.OpenAIModel, log)
}

func newLLMClient(name, apiKey, baseURL, model string, log *slog.Logger) *LLMClient {
	return &LLMClient{
		name:    name,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		log:     log.With(sl.Module(name)),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *LLMClient) Name() string {
	return c.name
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *LLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := Acquire(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.With(sl.Err(closeErr)).Warn("failed to close response body")
		}
	}()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion failed (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var chat chatResponse
	if err = json.Unmarshal(respBytes, &chat); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if chat.Error != nil {
		return "", fmt.Errorf("completion error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return strings.TrimSpace(chat.Choices[0].Message.Content), nil
}
