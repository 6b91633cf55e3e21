package commands

import (
	"fmt"

	"groot/pkg/exporter"

	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [commit-hash]",
	Short: "Show changes introduced by a commit",
	Long:  `Compare every file of the commit (HEAD by default) with its version in the parent commit, line by line.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()

		target := "HEAD"
		if len(args) > 0 {
			target = args[0]
		}
		hash, err := resolveCommit(ctx, target)
		if err != nil {
			return err
		}

		report, err := App.Repo.Diff(ctx, hash)
		if err != nil {
			return err
		}
		exporter.PrintDiff(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
