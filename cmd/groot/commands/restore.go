package commands

import (
	"fmt"
	"time"

	"groot/pkg/exporter"
	"groot/pkg/types"

	"github.com/spf13/cobra"
)

var restoreTarget string

var restoreCmd = &cobra.Command{
	Use:   "restore [commit-hash]",
	Short: "Write the files of a commit to disk",
	Long:  `Overwrite files in the working tree (or --target) with their content in the specified commit. HEAD and the index are left untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		start := time.Now()

		// 1. 解析目标 Commit Hash
		hash, err := resolveCommit(ctx, args[0])
		if err != nil {
			return err
		}

		// 2. 执行还原
		target := restoreTarget
		if target == "" {
			target = App.RepoPath
		}
		count := 0
		exp := exporter.NewExporter(App.Repo.Objects())
		err = exp.RestoreCommit(ctx, hash, target, func(path string, _ types.Hash) {
			fmt.Fprintf(out, "restored '%s'\n", path)
			count++
		})
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Fprintf(out, "Restored %d file(s) from %s in %s\n", count, hash.Short(), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVar(&restoreTarget, "target", "", "directory to restore into (default: repository root)")
}
