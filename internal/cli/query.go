package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ragbench/internal/domain"
)

var (
	queryText     string
	queryTopK     int
	queryStrategy string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve passages for a query",
	Long: `Run the configured retrieval strategy and print the ranked passages.

Examples:
  ragbench query -q "backup policy"
  ragbench query -q "backup policy" --strategy hyde --top-k 8 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().StringVar(&queryStrategy, "strategy", "", "retrieval strategy: naive, hyde, self-rag (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

// queryResult is a simplified result for CLI output.
type queryResult struct {
	Source      string  `json:"source"`
	Strategy    string  `json:"strategy,omitempty"`
	RerankScore float64 `json:"rerank_score,omitempty"`
	FinalQuery  string  `json:"final_query,omitempty"`
	Text        string  `json:"text"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer a.Close()

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}
	strategyName := cfg.Retrieve.Strategy
	if queryStrategy != "" {
		strategyName = queryStrategy
	}

	docs, err := a.workbench.Retrieve(strategyName, queryText, topK, nil)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	results := make([]queryResult, 0, len(docs))
	for _, d := range docs {
		r := queryResult{Source: d.Source(), Text: d.Text}
		if s, ok := d.Metadata[domain.MetaStrategy].(string); ok {
			r.Strategy = s
		}
		if score, ok := d.Metadata[domain.MetaRerankScore].(float64); ok {
			r.RerankScore = score
		}
		if q, ok := d.Metadata[domain.MetaFinalQuery].(string); ok {
			r.FinalQuery = q
		}
		results = append(results, r)
	}

	if queryJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No documents retrieved.")
		return nil
	}
	fmt.Printf("Found %d passages for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Printf("--- [%d] %s", i+1, r.Source)
		if r.RerankScore != 0 {
			fmt.Printf(" (rerank: %.3f)", r.RerankScore)
		}
		fmt.Println(" ---")
		text := r.Text
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		fmt.Println(text)
		fmt.Println()
	}
	return nil
}
