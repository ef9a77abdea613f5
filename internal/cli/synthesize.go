package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verifact/verifact/internal/verify"
	"github.com/verifact/verifact/internal/worker"
)

var (
	synthOut     string
	synthTimeout time.Duration
)

// synthesizeCmd represents the synthesize command
var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <subject>",
	Short: "Write a prose summary bounded to a subject's verified facts",
	Long: `Synthesize loads the subject's persisted verified facts (confidence
0.75 or higher), hands them to a single oracle, and instructs it to
write prose using only those facts.

If no fact clears the confidence bar, synthesis short-circuits without
calling any oracle - verified facts never get padded with invention.

Known limitation: the synthesized text is not re-verified against the
fact list; the oracle's instruction-following is trusted.

Example:
  verifact synthesize "Jeff Mills" --store postgres
  verifact synthesize "Blawan" --out bio.md`,
	Args: cobra.ExactArgs(1),
	RunE: runSynthesize,
}

func init() {
	rootCmd.AddCommand(synthesizeCmd)

	addOracleFlags(synthesizeCmd)
	addStoreFlags(synthesizeCmd)

	synthesizeCmd.Flags().StringVar(&subjectIDFlag, "subject-id", "", "external subject key (default: derived from the name)")
	synthesizeCmd.Flags().StringVar(&synthOut, "out", "", "write the document to this path (default: stdout)")
	synthesizeCmd.Flags().DurationVar(&synthTimeout, "timeout", 2*time.Minute, "overall synthesis timeout")
}

func runSynthesize(cmd *cobra.Command, args []string) error {
	subject := args[0]
	subjectID := subjectIDFlag
	if subjectID == "" {
		subjectID = worker.SubjectID(subject)
	}

	ctx, cancel := context.WithTimeout(context.Background(), synthTimeout)
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

	result, err := v.Synthesize(ctx, subjectID, subject)
	if errors.Is(err, verify.ErrInsufficientFacts) {
		fmt.Printf("No verified facts at or above confidence %.2f for %q - nothing to synthesize.\n",
			cfg.Synthesis.MinConfidence, subject)
		fmt.Println("Run `verifact verify` first, or lower the synthesis bar in your config.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}

	if synthOut != "" {
		if err := os.WriteFile(synthOut, []byte(result.Document+"\n"), 0644); err != nil {
			return fmt.Errorf("write document: %w", err)
		}
		fmt.Printf("✓ Wrote document: %s\n", synthOut)
	} else {
		fmt.Println(result.Document)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "\nClaims used: %d, oracle: %s, policy: %s\n",
			result.ClaimsUsed, result.Oracle, result.Policy)
	}

	return nil
}
