package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/verifact/verifact/internal/archive"
	"github.com/verifact/verifact/internal/model"
	"github.com/verifact/verifact/internal/oracle"
	"github.com/verifact/verifact/internal/store"
	"github.com/verifact/verifact/internal/verify"
)

// Flags shared by the verification commands
var (
	oracleList     string
	oracleModels   string
	quorumSize     int
	storeBackend   string
	postgresDSN    string
	archiveBackend string
	archiveDir     string
	redisAddr      string
	noCache        bool
	cacheDir       string
	oracleTimeout  time.Duration
)

// buildConfig assembles a Config from flags, environment, and defaults
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose

	if quorumSize > 0 {
		cfg.Quorum.Size = quorumSize
	}

	cfg.Store.Backend = storeBackend
	cfg.Store.PostgresDSN = postgresDSN
	if cfg.Store.PostgresDSN == "" {
		cfg.Store.PostgresDSN = viper.GetString("postgres_dsn") // VERIFACT_POSTGRES_DSN
	}

	cfg.Archive.Backend = archiveBackend
	cfg.Archive.Dir = archiveDir
	cfg.Archive.RedisAddr = redisAddr
	if cfg.Archive.RedisAddr == "" {
		cfg.Archive.RedisAddr = viper.GetString("redis_addr") // VERIFACT_REDIS_ADDR
	}
	cfg.Archive.RedisPassword = viper.GetString("redis_password")

	cfg.Cache.Enabled = !noCache
	if cacheDir != "" {
		cfg.Cache.Backend = "disk"
		cfg.Cache.Dir = cacheDir
	}

	models := parseModelOverrides(oracleModels)
	for _, provider := range strings.Split(oracleList, ",") {
		provider = strings.TrimSpace(provider)
		if provider == "" {
			continue
		}
		oc, err := oracleConfigFor(provider)
		if err != nil {
			return nil, err
		}
		oc.Model = models[provider]
		oc.Timeout = oracleTimeout
		cfg.Oracles = append(cfg.Oracles, oc)
	}

	return cfg, nil
}

// oracleConfigFor resolves one provider's credentials from the environment
func oracleConfigFor(provider string) (model.OracleConfig, error) {
	oc := model.OracleConfig{Provider: provider}

	switch strings.ToLower(provider) {
	case "openai":
		oc.APIKey = os.Getenv("OPENAI_API_KEY")
		if oc.APIKey == "" {
			return oc, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		oc.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if oc.APIKey == "" {
			return oc, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "gemini", "google":
		oc.APIKey = os.Getenv("GEMINI_API_KEY")
		if oc.APIKey == "" {
			return oc, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case "grok", "xai":
		oc.APIKey = os.Getenv("XAI_API_KEY")
		if oc.APIKey == "" {
			return oc, fmt.Errorf("XAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			oc.BaseURL = baseURL
		}
	default:
		return oc, fmt.Errorf("unknown oracle provider: %s", provider)
	}

	return oc, nil
}

// parseModelOverrides parses "openai=gpt-4o,anthropic=claude-3-5-haiku"
func parseModelOverrides(list string) map[string]string {
	models := make(map[string]string)
	for _, pair := range strings.Split(list, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && k != "" && v != "" {
			models[k] = v
		}
	}
	return models
}

// buildVerifier wires store, archive, and oracle adapters into a verifier.
// The returned cleanup closes backend connections.
func buildVerifier(cfg *model.Config) (*verify.Verifier, func(), error) {
	st, err := store.New(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	arc, err := archive.New(cfg.Archive)
	if err != nil {
		_ = st.Close()
		return nil, nil, fmt.Errorf("create archive: %w", err)
	}

	oracles, err := oracle.BuildAll(cfg.Oracles)
	if err != nil {
		_ = st.Close()
		_ = arc.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := arc.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: close archive: %v\n", err)
		}
		if err := st.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: close store: %v\n", err)
		}
	}

	return verify.New(cfg, oracles, st, arc), cleanup, nil
}

// addOracleFlags attaches the oracle selection flags to a command
func addOracleFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&oracleList, "oracles", "openai,anthropic", "comma-separated oracle providers (openai, anthropic, gemini, grok, ollama)")
	cmd.Flags().StringVar(&oracleModels, "models", "", "per-provider model overrides, e.g. openai=gpt-4o,anthropic=claude-3-5-haiku-20241022")
	cmd.Flags().DurationVar(&oracleTimeout, "oracle-timeout", 30*time.Second, "timeout for a single oracle call")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable oracle response cache (force fresh calls)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "use a persistent disk cache at this directory")
}

// addStoreFlags attaches the fact store and archive flags to a command
func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&storeBackend, "store", "memory", "fact store backend (memory, postgres)")
	cmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "postgres connection string (or VERIFACT_POSTGRES_DSN)")
	cmd.Flags().StringVar(&archiveBackend, "archive", "none", "raw response archive backend (none, disk, redis)")
	cmd.Flags().StringVar(&archiveDir, "archive-dir", ".verifact-archive", "directory for the disk archive")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "redis address for the archive (or VERIFACT_REDIS_ADDR)")
}
