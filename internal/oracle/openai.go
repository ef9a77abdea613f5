package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/verifact/verifact/internal/model"
)

const xaiBaseURL = "https://api.x.ai/v1"

// OpenAIOracle implements the Oracle interface over the Chat Completions
// API. It also backs the Grok adapter, since xAI exposes an
// OpenAI-compatible endpoint.
type OpenAIOracle struct {
	client *openai.Client
	name   string
	model  string
	cfg    model.OracleConfig
}

// NewOpenAIOracle creates a new OpenAI oracle
func NewOpenAIOracle(cfg model.OracleConfig) (*OpenAIOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}

	return &OpenAIOracle{
		client: openai.NewClientWithConfig(clientConfig),
		name:   "openai",
		model:  m,
		cfg:    cfg,
	}, nil
}

// NewGrokOracle creates an oracle for xAI's Grok models via their
// OpenAI-compatible API.
func NewGrokOracle(cfg model.OracleConfig) (*OpenAIOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("xAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = xaiBaseURL
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	m := cfg.Model
	if m == "" {
		m = "grok-2-latest"
	}

	return &OpenAIOracle{
		client: openai.NewClientWithConfig(clientConfig),
		name:   "grok",
		model:  m,
		cfg:    cfg,
	}, nil
}

// Name returns the oracle identifier
func (o *OpenAIOracle) Name() string {
	return o.name
}

// Invoke sends one prompt pair through the Chat Completions API
func (o *OpenAIOracle) Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	maxTokens := o.cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := o.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1, // high determinism for verification queries
	})
	if err != nil {
		return "", fmt.Errorf("%s API error: %w", o.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", o.name)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
