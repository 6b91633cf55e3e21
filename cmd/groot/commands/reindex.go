package commands

import (
	"errors"
	"fmt"

	"groot/pkg/meta"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the commit metadata index from history",
	Long:  `Walk the history from HEAD and project every commit into the metadata database configured by meta.driver. Already indexed commits are skipped.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		if App.Meta == nil {
			return fmt.Errorf("no metadata index configured (set meta.driver)")
		}
		ctx := cmd.Context()

		count := 0
		for entry, err := range App.Repo.Log(ctx) {
			if err != nil {
				return err
			}
			// 已经在库里的跳过
			_, err := App.Meta.GetCommit(ctx, entry.Hash)
			if err == nil {
				continue
			}
			if !errors.Is(err, meta.ErrCommitNotFound) {
				return err
			}
			if err := App.Meta.IndexCommit(ctx, entry.Commit); err != nil {
				return err
			}
			count++
		}

		total, err := App.Meta.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d new commit(s), %d in index\n", count, total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
