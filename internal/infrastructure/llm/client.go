// Package llm provides the text-generation adapter. It speaks either the
// Ollama generate API or an OpenAI-compatible completions API, selected by
// configuration, behind the same ports.Generator interface.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/colinc-deepflow/deepflow-control-center/internal/config"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

const (
	ModeOllama           = "ollama"
	ModeOpenAICompatible = "openai-compatible"
)

// Client implements ports.Generator over HTTP.
type Client struct {
	mode       string
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Generator = (*Client)(nil)

// NewClient builds a generation client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		mode:     cfg.Mode,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Generate sends one prompt and returns the provider's text reply.
func (c *Client) Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	if c.endpoint == "" {
		return ports.GenerationResult{}, fmt.Errorf("llm client misconfigured: empty endpoint")
	}

	switch c.mode {
	case ModeOllama, "":
		return c.generateOllama(ctx, req)
	case ModeOpenAICompatible:
		return c.generateOpenAI(ctx, req)
	default:
		return ports.GenerationResult{}, fmt.Errorf("unknown llm mode %q", c.mode)
	}
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (c *Client) generateOllama(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	payload := ollamaRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	var reply ollamaResponse
	if err := c.post(ctx, c.endpoint+"/api/generate", payload, &reply); err != nil {
		return ports.GenerationResult{}, err
	}

	return ports.GenerationResult{
		Text:       reply.Response,
		TokensUsed: reply.PromptEvalCount + reply.EvalCount,
	}, nil
}

type openAIRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *Client) generateOpenAI(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	payload := openAIRequest{
		Model:       req.Model,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var reply openAIResponse
	if err := c.post(ctx, c.endpoint+"/v1/completions", payload, &reply); err != nil {
		return ports.GenerationResult{}, err
	}

	if len(reply.Choices) == 0 {
		return ports.GenerationResult{}, fmt.Errorf("completion response has no choices")
	}

	return ports.GenerationResult{
		Text:       reply.Choices[0].Text,
		TokensUsed: reply.Usage.TotalTokens,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call generation provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("provider error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}

	return nil
}
