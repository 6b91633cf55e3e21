package commands

import (
	"fmt"
	"path/filepath"

	"groot/pkg/repo"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a Groot repository",
	Long:  `Create an empty Groot repository or reinitialize an existing one.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 获取工作区路径
		root, err := filepath.Abs(viper.GetString("repo.path"))
		if err != nil {
			return err
		}

		// 2. 创建 .groot 目录结构
		created, err := repo.Init(root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if created {
			fmt.Fprintf(out, "Initialized empty Groot repository in %s\n", repo.Layout(root))
		} else {
			fmt.Fprintf(out, "Reinitialized existing Groot repository in %s\n", repo.Layout(root))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
