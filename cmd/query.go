package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepakdgupta1/knowcode/internal/model"
)

var (
	flagRoot          string
	flagMaxTokens     int
	flagLimitEntities int
	flagExpandDeps    bool
	flagTaskType      string
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Retrieve synthesized context for a natural-language query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(flagRoot)
		if err != nil {
			return err
		}

		eng, err := openEngine(root)
		if err != nil {
			return err
		}
		defer eng.Close()

		query := strings.Join(args, " ")
		bundle := eng.RetrieveContext(context.Background(), query, model.TaskType(flagTaskType), flagMaxTokens, flagLimitEntities, flagExpandDeps)

		fmt.Println(bundle.ContextText)
		fmt.Printf("\n--- task=%s mode=%s tokens=%d sufficiency=%.2f entities=%d ---\n",
			bundle.TaskType, bundle.RetrievalMode, bundle.TotalTokens, bundle.SufficiencyScore, len(bundle.SelectedEntities))

		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&flagRoot, "root", ".", "analyzed project root")
	queryCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 4000, "context token budget")
	queryCmd.Flags().IntVar(&flagLimitEntities, "limit", 0, "max entities to retrieve (default: retrieval.top_n from config)")
	queryCmd.Flags().BoolVar(&flagExpandDeps, "expand-deps", true, "expand one hop of callers/callees")
	queryCmd.Flags().StringVar(&flagTaskType, "task", string(model.TaskAuto), "task type hint: explain, debug, extend, review, locate, general, auto")
	rootCmd.AddCommand(queryCmd)
}
