package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/filesense/internal/ai"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect or load the model catalog used for estimates",
	Example: `  filesense models show
  filesense models sync --file ./models.json --merge`,
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := ai.Catalog()
		keys := make([]string, 0, len(cat))
		for k := range cat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := cmd.OutOrStdout()
		for _, k := range keys {
			mi := cat[k]
			marker := " "
			for _, d := range ai.DefaultModels {
				if d == k {
					marker = "*"
				}
			}
			fmt.Fprintf(out, "%s %-32s ctx=%-8d in=$%.5f/1K out=$%.5f/1K\n", marker, k, mi.ContextTokens, mi.InputPerK, mi.OutputPerK)
		}
		return nil
	},
}

var (
	syncPath  string
	syncMerge bool
	syncJSON  bool
)

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Load model catalog/pricing from a JSON file",
	Long: `Load a catalog for this invocation. Set models_file in the config to apply
a catalog on every run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPath == "" {
			return fmt.Errorf("--file is required")
		}
		m, err := ai.LoadCatalogFromJSON(syncPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		out := cmd.OutOrStdout()
		if syncMerge {
			ai.MergeCatalog(m)
			fmt.Fprintf(out, "✓ Merged %d models from file\n", len(m))
		} else {
			ai.OverrideCatalog(m)
			fmt.Fprintf(out, "✓ Replaced model catalog with %d models from file\n", len(m))
		}
		if syncJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ai.Catalog())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsSyncCmd)

	modelsSyncCmd.Flags().StringVar(&syncPath, "file", "", "path to JSON catalog file")
	modelsSyncCmd.Flags().BoolVar(&syncMerge, "merge", false, "merge into existing catalog instead of replacing")
	modelsSyncCmd.Flags().BoolVar(&syncJSON, "print", false, "print the resulting catalog as JSON")
}
