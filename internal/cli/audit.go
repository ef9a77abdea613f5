package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/verifact/verifact/internal/model"
	"github.com/verifact/verifact/internal/store"
)

var (
	auditMinConfidence float64
	auditTimeout       time.Duration
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Prune stored facts that no longer meet the acceptance policy",
	Long: `Audit re-applies the current acceptance policy retroactively: facts
below the confidence floor, or persisted from unverified runs, are
deleted. Useful after raising the quorum threshold - old generations
of facts get held to the new standard.

Running audit twice in a row deletes nothing the second time.

Example:
  verifact audit --store postgres
  verifact audit --store postgres --min-confidence 0.8`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	addStoreFlags(auditCmd)
	auditCmd.Flags().Float64Var(&auditMinConfidence, "min-confidence", 0, "confidence floor (default 0.65)")
	auditCmd.Flags().DurationVar(&auditTimeout, "timeout", time.Minute, "audit timeout")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Output.Verbose = verbose
	cfg.Store.Backend = storeBackend
	cfg.Store.PostgresDSN = postgresDSN
	if cfg.Store.PostgresDSN == "" {
		cfg.Store.PostgresDSN = viper.GetString("postgres_dsn")
	}
	if auditMinConfidence > 0 {
		cfg.Audit.MinConfidence = auditMinConfidence
	}

	st, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer func() { _ = st.Close() }()

	pruned, err := st.Prune(ctx, cfg.Audit.MinConfidence)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	remaining, err := st.Count(ctx)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	fmt.Printf("Pruned:    %d facts\n", pruned)
	fmt.Printf("Remaining: %d facts\n", remaining)
	return nil
}
