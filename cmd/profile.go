package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/filesense/internal/analysis"
	"github.com/KaramelBytes/filesense/internal/dataset"
	"github.com/KaramelBytes/filesense/internal/utils"
)

var profJSON bool

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Print the column profile of a dataset without calling a model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		rows, err := dataset.LoadFile(path)
		if err != nil {
			return err
		}
		prof, ok := analysis.Profile(rows)
		if !ok {
			return fmt.Errorf("%s: %w", filepath.Base(path), errEmptyFile)
		}
		out := cmd.OutOrStdout()
		if profJSON {
			b, err := utils.PrettyJSON(prof)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprint(out, prof.Markdown(filepath.Base(path)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().BoolVar(&profJSON, "json", false, "print the profile as JSON")
}
