package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verifact/verifact/internal/model"
	"github.com/verifact/verifact/internal/worker"
)

var (
	subjectIDFlag string
	outJSON       string
	runTimeout    time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <subject>",
	Short: "Verify facts about a subject across multiple model oracles",
	Long: `Verify fans the same strict research question out to every configured
oracle concurrently, normalizes the structured claims that come back,
and accepts only facts that enough distinct oracles independently agree
on. Accepted facts are persisted to the fact store; everything below
quorum is silently dropped.

A run where every oracle fails or refuses still completes - it yields
an unverified result with zero facts, which is a normal outcome.

Example:
  verifact verify "Jeff Mills"
  verifact verify "Ellen Allien" --oracles openai,anthropic,gemini --quorum 3
  verifact verify "Surgeon" --store postgres --archive redis --json run.json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	addOracleFlags(verifyCmd)
	addStoreFlags(verifyCmd)

	verifyCmd.Flags().StringVar(&subjectIDFlag, "subject-id", "", "external subject key (default: derived from the name)")
	verifyCmd.Flags().IntVar(&quorumSize, "quorum", 0, "distinct oracles required to accept a fact (default 2)")
	verifyCmd.Flags().StringVar(&outJSON, "json", "", "write the verification run as JSON to this path")
	verifyCmd.Flags().DurationVar(&runTimeout, "timeout", 3*time.Minute, "overall verification timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	subject := args[0]
	subjectID := subjectIDFlag
	if subjectID == "" {
		subjectID = worker.SubjectID(subject)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	v, cleanup, err := buildVerifier(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s (subject-id %s)\n", subject, subjectID)
		fmt.Fprintf(os.Stderr, "Oracles: %s, quorum: %d\n\n", oracleList, cfg.Quorum.Size)
	}

	run, err := v.Run(ctx, subjectID, subject)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	printRun(run)

	if outJSON != "" {
		data, err := json.MarshalIndent(run, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal run: %w", err)
		}
		if err := os.WriteFile(outJSON, data, 0644); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}

	return nil
}

func printRun(run *model.VerificationRun) {
	fmt.Printf("Subject:   %s\n", run.Subject)
	fmt.Printf("Level:     %s\n", run.Level)
	fmt.Printf("Oracles:   %d/%d responded (%d refused, %d failed)\n",
		run.OraclesResponded, run.OraclesQueried, run.Refusals, run.Errors)
	fmt.Printf("Accepted:  %d facts\n", len(run.Facts))

	if len(run.Facts) > 0 {
		fmt.Println()
		for _, f := range run.Facts {
			fmt.Printf("  [%.2f] %-12s %s  (%d oracles)\n",
				f.Confidence, f.Type, f.ClaimText, len(f.Oracles))
		}
	}
}
