package commands

import (
	"fmt"

	"groot/pkg/exporter"

	"github.com/spf13/cobra"
)

var catPretty bool

var catCmd = &cobra.Command{
	Use:   "cat [hash]",
	Short: "Show an object by hash",
	Long:  `Describe the object stored under the given hash. With -p the raw content is written to stdout, so it can be redirected with > file.`,
	Args:  cobra.ExactArgs(1), // 必须提供 Hash
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()

		// 1. 支持短哈希
		hash, err := resolveCommit(ctx, args[0])
		if err != nil {
			return err
		}

		// 2. 执行导出
		exp := exporter.NewExporter(App.Repo.Objects())
		if catPretty {
			err = exp.ExportFile(ctx, hash, cmd.OutOrStdout())
		} else {
			err = exp.PrintObject(ctx, hash, cmd.OutOrStdout())
		}
		if err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	catCmd.Flags().BoolVarP(&catPretty, "print", "p", false, "print the raw object content")
}
