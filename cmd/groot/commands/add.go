package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add [path...]",
	Short: "Add file contents to the index",
	Long:  `Store the content of each file and record it in the staging area. Directories are walked recursively, honouring .grootignore.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		start := time.Now()

		added := 0
		for _, target := range args {
			// 用户输入的路径，可能是文件，也可能是目录
			full := target
			if !filepath.IsAbs(full) {
				full = filepath.Join(App.RepoPath, target)
			}
			info, err := os.Stat(full)

			if err == nil && info.IsDir() {
				entries, err := App.Repo.StageAll(ctx, target)
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(out, "add '%s'\n", e.Path)
				}
				added += len(entries)
				continue
			}

			// 文件 (或不存在的路径，由 Stage 报告 ErrFileNotFound)
			if _, err := App.Repo.Stage(ctx, target); err != nil {
				return err
			}
			fmt.Fprintf(out, "add '%s'\n", filepath.ToSlash(target))
			added++
		}

		if added == 0 {
			fmt.Fprintln(out, "No files added.")
			return nil
		}
		fmt.Fprintf(out, "Added %d file(s) in %s\n", added, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
