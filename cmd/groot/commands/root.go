package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"groot/pkg/app"
	"groot/pkg/config"
	"groot/pkg/repo"
	"groot/pkg/types"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// 全局应用实例，供子命令使用
	App *app.App
)

var rootCmd = &cobra.Command{
	Use:           "groot",
	Short:         "Groot: a minimal local version control system",
	SilenceUsage:  true,
	SilenceErrors: true,
	// 【关键】PersistentPreRunE 会在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 跳过 init 命令的依赖检查 (因为它就是去创建环境的)
		if cmd.Name() == "init" {
			return nil
		}

		// 统一初始化 App
		var err error
		App, err = app.NewApp(cmd.Context())
		if errors.Is(err, repo.ErrNotRepository) {
			return fmt.Errorf("%w\n(Did you run 'groot init'?)", err)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize groot: %w", err)
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext 执行命令并在结束后释放 App
func ExecuteContext(ctx context.Context) error {
	defer func() {
		if App != nil {
			App.Close()
			App = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// 在初始化时，加载配置
	cobra.OnInitialize(initConfig)

	// 1. 定义全局参数 --config
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .groot/config.yaml)")

	// 2. 定义 repo.path 参数，并绑定到 Viper
	// 这样用户既可以在 yaml 里写，也可以用 -C 覆盖
	rootCmd.PersistentFlags().StringP("repo", "C", "", "run as if groot was started in this directory")
	if err := viper.BindPFlag("repo.path", rootCmd.PersistentFlags().Lookup("repo")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "Config error:", err)
		os.Exit(1)
	}
}

// resolveCommit 把命令行参数解析成完整的提交 Hash
// 支持短哈希以及 "HEAD"
func resolveCommit(ctx context.Context, arg string) (types.Hash, error) {
	if strings.EqualFold(arg, "HEAD") {
		head, ok, err := App.Repo.Head(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", fmt.Errorf("HEAD does not point to a commit yet")
		}
		return head, nil
	}

	full, err := App.Repo.Objects().Expand(ctx, types.HashPrefix(strings.ToLower(arg)))
	if err != nil {
		return "", fmt.Errorf("invalid object argument '%s': %w", arg, err)
	}
	return full, nil
}
