package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagStateDir string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "knowcode",
	Short: "Code-to-knowledge-base retrieval and context synthesis",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to knowcode.yaml (default: ./knowcode.yaml, then ~/.knowcode.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "directory for the analyze state (default <project>/.knowcode)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
}
