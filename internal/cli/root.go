package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ragbench/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "ragbench",
	Short: "Local RAG workbench - index documents and answer questions grounded in them",
	Long: `ragbench indexes a private document collection into per-embedding-model
vector collections and answers questions with a pluggable retrieval
strategy: plain similarity search, HyDE hypothesis search, or a
self-correcting retrieve/grade/rewrite workflow.

Example usage:
  ragbench index ./docs                 # Index a directory
  ragbench query -q "backup policy"     # Retrieve matching passages
  ragbench ask -q "how are backups run" --strategy self-rag
  ragbench serve                        # Expose the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		// API keys commonly live in a local .env during development.
		_ = godotenv.Load()

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ragbench.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "workbench directory (default is current directory)")
}
