package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"personagen/internal/pipeline"
	"personagen/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Generate personas for multiple users from a file in parallel",
	Long: `Batch reads profile URLs or usernames from a file (one per line)
and generates a persona for each, running jobs in parallel with a
configurable worker count. Each job is still the sequential
parse/collect/synthesize/write pipeline.

Example:
  personagen batch users.txt
  personagen batch users.txt --concurrency 8 --output ./personas`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "Input file: %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:    %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "Output dir: %s\n", cfg.Output.Dir)
	fmt.Fprintln(os.Stderr)

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Input, result.Error)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d traits)\n", result.Persona.Username, len(result.Persona.Traits))
	}

	fmt.Fprintf(os.Stderr, "\nProcessed %d inputs, %d failed\n", len(results), failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d personas failed", failed, len(results))
	}
	return nil
}
