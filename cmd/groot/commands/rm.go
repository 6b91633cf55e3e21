package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [files...]",
	Short: "Remove files from the staging area (index)",
	Long:  `Unstage files from the index. This does not delete files from the filesystem, but they will no longer be part of the next commit.`,
	Args:  cobra.MinimumNArgs(1), // 至少指定一个文件
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		out := cmd.OutOrStdout()

		count := 0
		for _, path := range args {
			removed, err := App.Repo.Unstage(path)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(out, "not staged: %s\n", path)
				continue
			}
			fmt.Fprintf(out, "Unstaged: %s\n", path)
			count++
		}

		if count > 0 {
			fmt.Fprintf(out, "Removed %d file(s) from index.\n", count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
