package oracle

import (
	"testing"

	"github.com/verifact/verifact/internal/model"
)

func TestNew_Providers(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{"openai", "openai"},
		{"grok", "grok"},
		{"xai", "grok"},
		{"anthropic", "anthropic"},
		{"claude", "anthropic"},
		{"gemini", "gemini"},
		{"google", "gemini"},
		{"ollama", "ollama"},
		{"OpenAI", "openai"}, // case-insensitive
	}

	for _, tt := range tests {
		o, err := New(model.OracleConfig{Provider: tt.provider, APIKey: "test-key"})
		if err != nil {
			t.Errorf("New(%s) failed: %v", tt.provider, err)
			continue
		}
		if o.Name() != tt.wantName {
			t.Errorf("New(%s).Name() = %s, want %s", tt.provider, o.Name(), tt.wantName)
		}
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(model.OracleConfig{Provider: "bard"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestBuildAll(t *testing.T) {
	oracles, err := BuildAll([]model.OracleConfig{
		{Provider: "openai", APIKey: "k1"},
		{Provider: "anthropic", APIKey: "k2"},
	})
	if err != nil {
		t.Fatalf("BuildAll failed: %v", err)
	}
	if len(oracles) != 2 {
		t.Errorf("expected 2 oracles, got %d", len(oracles))
	}
}

func TestBuildAll_FailsFast(t *testing.T) {
	_, err := BuildAll([]model.OracleConfig{
		{Provider: "openai", APIKey: "k1"},
		{Provider: "anthropic"}, // missing key
	})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
}
