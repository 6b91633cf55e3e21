package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	commitMsg  string
	allowEmpty bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record changes to the repository",
	Long:  `Create a new commit containing the current contents of the index and the given log message describing the changes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 0. 防御检查
		if App == nil {
			return fmt.Errorf("application not initialized")
		}
		if commitMsg == "" {
			return fmt.Errorf("commit message cannot be empty (use -m)")
		}
		out := cmd.OutOrStdout()

		// 1. 暂存区为空时默认拒绝，避免误操作
		if len(App.Repo.Entries()) == 0 && !allowEmpty {
			fmt.Fprintln(out, "nothing to commit (use --allow-empty to record an empty commit)")
			return nil
		}

		// 2. 提交
		_, isChild, err := App.Repo.Head(cmd.Context())
		if err != nil {
			return err
		}
		hash, err := App.Repo.Commit(cmd.Context(), commitMsg)
		if err != nil {
			return err
		}

		if !isChild {
			fmt.Fprintf(out, "[%s (root-commit)] %s\n", hash.Short(), commitMsg)
		} else {
			fmt.Fprintf(out, "[%s] %s\n", hash.Short(), commitMsg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commitCmd)

	// 绑定 Flags
	commitCmd.Flags().StringVarP(&commitMsg, "message", "m", "", "commit message")
	commitCmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "allow recording a commit with an empty index")
}
