package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askText     string
	askTopK     int
	askStrategy string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question grounded in the indexed documents",
	Long: `Retrieve passages with the configured strategy and generate an answer
from them, with source citations.

Examples:
  ragbench ask -q "how are backups run"
  ragbench ask -q "how are backups run" --strategy self-rag`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askText, "query", "q", "", "question (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of grounding passages (default from config)")
	askCmd.Flags().StringVar(&askStrategy, "strategy", "", "retrieval strategy: naive, hyde, self-rag (default from config)")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := cfg.Retrieve.TopK
	if askTopK > 0 {
		topK = askTopK
	}
	strategyName := cfg.Retrieve.Strategy
	if askStrategy != "" {
		strategyName = askStrategy
	}

	answer, err := a.workbench.Ask(strategyName, askText, topK)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if !answer.Grounded {
		// No grounding found is a valid outcome, distinct from a failure.
		fmt.Println("No relevant documents found for this question.")
		return nil
	}

	fmt.Println(answer.Text)
	fmt.Printf("\nSources: %s\n", strings.Join(answer.Sources, ", "))
	return nil
}
