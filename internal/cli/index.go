package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragbench/internal/adapter/loader"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index documents into the active embedding model's collection",
	Long: `Walk a directory, split matching files into passages and embed them into
the vector collection bound to the configured embedding model.

Examples:
  ragbench index ./docs
  ragbench index .`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	a, err := buildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer a.Close()

	l := loader.NewFSLoader(cfg.Ingest.Includes, cfg.Ingest.Excludes, cfg.Ingest.MaxChars)
	docs, err := l.Load(root)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Println("No matching documents found.")
		return nil
	}

	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Indexing"),
	)

	// Embedding runs in batches; feed the bar a batch at a time.
	const batchSize = 32
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := a.workbench.Index(docs[i:end]); err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}
		bar.Add(end - i)
	}
	fmt.Println()

	stats, err := a.workbench.Stats()
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d passages from %d sources (collection total: %d)\n",
		len(docs), stats.DistinctSources, stats.Count)
	return nil
}
