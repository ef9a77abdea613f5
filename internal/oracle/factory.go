package oracle

import (
	"fmt"
	"strings"

	"github.com/verifact/verifact/internal/model"
)

// New creates an oracle adapter from configuration
func New(cfg model.OracleConfig) (Oracle, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIOracle(cfg)

	case "grok", "xai":
		return NewGrokOracle(cfg)

	case "anthropic", "claude":
		return NewAnthropicOracle(cfg)

	case "gemini", "google":
		return NewGeminiOracle(cfg)

	case "ollama":
		return NewOllamaOracle(cfg)

	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, anthropic, gemini, grok, ollama)", cfg.Provider)
	}
}

// BuildAll creates all configured adapters, failing on the first bad entry
func BuildAll(cfgs []model.OracleConfig) ([]Oracle, error) {
	oracles := make([]Oracle, 0, len(cfgs))
	for _, cfg := range cfgs {
		o, err := New(cfg)
		if err != nil {
			return nil, fmt.Errorf("oracle %s: %w", cfg.Provider, err)
		}
		oracles = append(oracles, o)
	}
	return oracles, nil
}
