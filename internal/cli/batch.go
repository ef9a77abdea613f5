package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/verifact/verifact/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify multiple subjects from a file in parallel",
	Long: `Batch verifies multiple subjects concurrently:
- Read subject names from the input file (one per line, # for comments)
- Verify subjects in parallel with a configurable worker count
- Each verification still fans out to every oracle concurrently

The worker pool bounds how many subjects are in flight; oracle calls
are additionally rate-limited per vendor.

Example:
  verifact batch artists.txt
  verifact batch artists.txt --concurrency 4 --store postgres
  verifact batch artists.txt --oracles openai,anthropic,gemini --quorum 3`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addOracleFlags(batchCmd)
	addStoreFlags(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent subject verifications")
	batchCmd.Flags().IntVar(&quorumSize, "quorum", 0, "distinct oracles required to accept a fact (default 2)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 15*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
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
		fmt.Fprintf(os.Stderr, "Input file:  %s\n", file)
		fmt.Fprintf(os.Stderr, "Workers:     %d\n", concurrency)
		fmt.Fprintf(os.Stderr, "Oracles:     %s\n\n", oracleList)
	}

	processor := worker.NewBatchProcessor(v, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	var verified, partial, unverified, failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Subject, r.Error)
			continue
		}
		switch r.Run.Level {
		case "verified":
			verified++
		case "partially_verified":
			partial++
		default:
			unverified++
		}
		fmt.Printf("%-30s %-20s %d facts (%d/%d oracles)\n",
			r.Subject, r.Run.Level, len(r.Run.Facts), r.Run.OraclesResponded, r.Run.OraclesQueried)
	}

	fmt.Printf("\nDone: %d verified, %d partially verified, %d unverified, %d failed\n",
		verified, partial, unverified, failed)
	return nil
}
