package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for the active collection",
	RunE:  runStats,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Purge the active embedding model's collection",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.workbench.Stats()
	if err != nil {
		return err
	}

	if statsJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
		return nil
	}
	fmt.Printf("Passages: %d\nDistinct sources: %d\n", stats.Count, stats.DistinctSources)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.workbench.Clear(); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	fmt.Println("Collection cleared.")
	return nil
}
