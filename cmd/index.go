package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	flagCoverageXML     string
	flagGitHistoryLimit int
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Analyze a codebase and build its knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngineWithSignals(root, flagCoverageXML, flagGitHistoryLimit)
		if err != nil {
			return err
		}
		defer eng.Close()

		fmt.Printf("Analyzing %s...\n", root)
		start := time.Now()

		stats, err := eng.Analyze(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Printf("\nDone in %s\n", elapsed.Round(time.Millisecond))
		fmt.Printf("  Files:   %d total, %d indexed, %d skipped\n", stats.FilesTotal, stats.FilesIndexed, stats.FilesSkipped)
		fmt.Printf("  Chunks:  %d\n", stats.ChunksTotal)
		if stats.ParseErrors > 0 {
			fmt.Printf("  Parse errors: %d (non-fatal)\n", stats.ParseErrors)
		}

		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&flagCoverageXML, "coverage-xml", "", "path to a Cobertura coverage report to ingest alongside the analyze run")
	indexCmd.Flags().IntVar(&flagGitHistoryLimit, "git-history-limit", 0, "ingest commit/author entities from the last N commits (0 disables)")
	rootCmd.AddCommand(indexCmd)
}
