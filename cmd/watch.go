package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deepakdgupta1/knowcode/internal/watcher"
)

var flagDebounceMS int

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch a codebase and incrementally re-index on change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		eng, err := openEngine(root)
		if err != nil {
			return err
		}
		defer eng.Close()

		fmt.Printf("Analyzing %s before watching...\n", root)
		if _, err := eng.Analyze(context.Background()); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching %s for changes (debounce %dms). Press Ctrl-C to stop.\n", root, flagDebounceMS)
		return eng.Watch(ctx, flagDebounceMS)
	},
}

func init() {
	watchCmd.Flags().IntVar(&flagDebounceMS, "debounce-ms", watcher.DefaultDebounce, "quiet window before a batch of changes is re-indexed")
	rootCmd.AddCommand(watchCmd)
}
