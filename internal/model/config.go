package model

import "time"

// Config holds the complete verifact configuration.
// It is built by the caller and injected into the verifier - there is no
// process-wide singleton.
type Config struct {
	Oracles   []OracleConfig  `yaml:"oracles"`
	Quorum    QuorumConfig    `yaml:"quorum"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Audit     AuditConfig     `yaml:"audit"`
	Store     StoreConfig     `yaml:"store"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Output    OutputConfig    `yaml:"output"`
}

// OracleConfig configures one oracle adapter
type OracleConfig struct {
	// Provider name: "openai", "anthropic", "gemini", "grok", "ollama"
	Provider string `yaml:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model,omitempty"`

	// APIKey for the vendor (recommended: environment variables instead)
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL for custom endpoints (e.g., Ollama, proxies)
	BaseURL string `yaml:"base_url,omitempty"`

	// Timeout for a single oracle call
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// QuorumConfig holds the acceptance policy. The confidence formula
// (base + step*agreement, capped) and quorum size are empirical product
// choices, kept configurable rather than hard-coded.
type QuorumConfig struct {
	Size           int     `yaml:"size"`            // distinct oracles required to accept a fact
	BaseConfidence float64 `yaml:"base_confidence"` // confidence floor for anything that cleared quorum
	Step           float64 `yaml:"step"`            // added per agreeing oracle
	Cap            float64 `yaml:"cap"`             // perfect certainty is never claimed
}

// SynthesisConfig bounds evidence synthesis
type SynthesisConfig struct {
	MinConfidence float64 `yaml:"min_confidence"` // stricter than bare quorum
	MaxFacts      int     `yaml:"max_facts"`
	Oracle        string  `yaml:"oracle,omitempty"` // provider to synthesize with (default: first configured)
	MaxTokens     int     `yaml:"max_tokens"`
}

// AuditConfig holds the retroactive prune policy
type AuditConfig struct {
	MinConfidence float64 `yaml:"min_confidence"`
}

// StoreConfig selects and configures the fact store backend
type StoreConfig struct {
	// Backend: "memory" or "postgres"
	Backend     string `yaml:"backend"`
	PostgresDSN string `yaml:"postgres_dsn,omitempty"`
}

// ArchiveConfig configures best-effort raw response archival
type ArchiveConfig struct {
	// Backend: "none", "disk", or "redis"
	Backend       string `yaml:"backend"`
	Dir           string `yaml:"dir,omitempty"`
	RedisAddr     string `yaml:"redis_addr,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
	MaxPerSubject int64  `yaml:"max_per_subject"`
}

// CacheConfig configures the oracle response cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Backend string        `yaml:"backend"` // "memory" or "disk"
	Dir     string        `yaml:"dir,omitempty"`
	TTL     time.Duration `yaml:"ttl"`
}

// RateLimitConfig throttles outbound oracle calls per oracle
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Oracles: nil, // configured by caller; zero oracles is a configuration error at run time
		Quorum: QuorumConfig{
			Size:           2,
			BaseConfidence: 0.7,
			Step:           0.1,
			Cap:            0.95,
		},
		Synthesis: SynthesisConfig{
			MinConfidence: 0.75,
			MaxFacts:      50,
			MaxTokens:     1000,
		},
		Audit: AuditConfig{
			MinConfidence: 0.65,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Archive: ArchiveConfig{
			Backend:       "none",
			MaxPerSubject: 200,
		},
		Cache: CacheConfig{
			Enabled: true,
			Backend: "memory",
			TTL:     24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			Burst:             2,
		},
	}
}
