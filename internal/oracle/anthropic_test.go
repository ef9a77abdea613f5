package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/verifact/verifact/internal/model"
)

func TestAnthropicOracle_Invoke_Success(t *testing.T) {
	// Mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		var apiReq anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&apiReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if apiReq.System == "" {
			t.Error("expected system prompt to be set")
		}
		if len(apiReq.Messages) != 1 || apiReq.Messages[0].Role != "user" {
			t.Errorf("expected one user message, got %v", apiReq.Messages)
		}

		resp := anthropicResponse{
			ID:   "msg_123",
			Type: "message",
			Role: "assistant",
			Content: []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			}{
				{Type: "text", Text: `{"real_name": "Jeff Mills", "confidence_level": "high"}`},
			},
			Model: "claude-3-5-sonnet-20241022",
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	o, err := NewAnthropicOracle(model.OracleConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("Failed to create oracle: %v", err)
	}

	text, err := o.Invoke(context.Background(), ResearchSystemPrompt, ResearchPrompt("Jeff Mills"))
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if !strings.Contains(text, "Jeff Mills") {
		t.Errorf("Unexpected reply: %s", text)
	}
}

func TestAnthropicOracle_Invoke_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "api_error", "message": "Internal Server Error"}}`))
	}))
	defer server.Close()

	o, err := NewAnthropicOracle(model.OracleConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("Failed to create oracle: %v", err)
	}

	_, err = o.Invoke(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Internal Server Error") {
		t.Errorf("Expected error message to contain 'Internal Server Error', got %v", err)
	}
}

func TestAnthropicOracle_Invoke_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "rate_limit_error", "message": "Rate limit exceeded"}}`))
	}))
	defer server.Close()

	o, err := NewAnthropicOracle(model.OracleConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("Failed to create oracle: %v", err)
	}

	_, err = o.Invoke(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestAnthropicOracle_Invoke_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	o, err := NewAnthropicOracle(model.OracleConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("Failed to create oracle: %v", err)
	}

	_, err = o.Invoke(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestAnthropicOracle_RequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicOracle(model.OracleConfig{})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestAnthropicOracle_Name(t *testing.T) {
	o, err := NewAnthropicOracle(model.OracleConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("Failed to create oracle: %v", err)
	}
	if o.Name() != "anthropic" {
		t.Errorf("expected anthropic, got %s", o.Name())
	}
}
