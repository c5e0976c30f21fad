package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/colinc-deepflow/deepflow-control-center/internal/config"
	"github.com/colinc-deepflow/deepflow-control-center/internal/ports"
)

func TestGenerateOllama(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"response":          `{"lead_score": 70}`,
			"prompt_eval_count": 120,
			"eval_count":        80,
		})
	}))
	defer srv.Close()

	client := NewClient(config.LLMConfig{
		Mode:           ModeOllama,
		Endpoint:       srv.URL,
		RequestTimeout: 5 * time.Second,
	})

	result, err := client.Generate(context.Background(), ports.GenerationRequest{
		Model:       "qwen2.5:14b",
		Prompt:      "analyse this",
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if gotPath != "/api/generate" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotBody["model"] != "qwen2.5:14b" {
		t.Fatalf("unexpected model: %v", gotBody["model"])
	}
	if stream, ok := gotBody["stream"].(bool); !ok || stream {
		t.Fatal("request must disable streaming")
	}
	if result.Text != `{"lead_score": 70}` {
		t.Fatalf("unexpected text: %q", result.Text)
	}
	if result.TokensUsed != 200 {
		t.Fatalf("unexpected token count: %d", result.TokensUsed)
	}
}

func TestGenerateOpenAICompatible(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"text": "generated copy"}},
			"usage":   map[string]any{"total_tokens": 345},
		})
	}))
	defer srv.Close()

	client := NewClient(config.LLMConfig{
		Mode:           ModeOpenAICompatible,
		Endpoint:       srv.URL,
		APIKey:         "secret-key",
		RequestTimeout: 5 * time.Second,
	})

	result, err := client.Generate(context.Background(), ports.GenerationRequest{
		Model:  "qwen2.5:32b",
		Prompt: "write a proposal",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if gotPath != "/v1/completions" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if result.Text != "generated copy" {
		t.Fatalf("unexpected text: %q", result.Text)
	}
	if result.TokensUsed != 345 {
		t.Fatalf("unexpected token count: %d", result.TokensUsed)
	}
}

func TestGenerateSurfacesProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(config.LLMConfig{
		Mode:           ModeOllama,
		Endpoint:       srv.URL,
		RequestTimeout: 5 * time.Second,
	})

	if _, err := client.Generate(context.Background(), ports.GenerationRequest{Model: "missing"}); err == nil {
		t.Fatal("expected provider error")
	}
}

func TestGenerateRejectsUnknownMode(t *testing.T) {
	t.Parallel()

	client := NewClient(config.LLMConfig{Mode: "carrier-pigeon", Endpoint: "http://localhost:1"})
	if _, err := client.Generate(context.Background(), ports.GenerationRequest{}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
