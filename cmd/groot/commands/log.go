package commands

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"groot/pkg/exporter"
	"groot/pkg/repo"
	"groot/pkg/types"

	"github.com/spf13/cobra"
)

var (
	logOneline bool
	logGrep    string
	logLimit   int
)

var logCmd = &cobra.Command{
	Use:   "log [commit-hash]",
	Short: "Show commit logs",
	Long:  `Display the commit history starting from the specified commit (or HEAD if not specified).`,
	Args:  cobra.MaximumNArgs(1), // 0 或 1 个参数
	RunE: func(cmd *cobra.Command, args []string) error {
		if App == nil {
			return fmt.Errorf("app not initialized")
		}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		// 1. 有元数据索引、且索引覆盖了整段历史时，--grep 直接查库
		// 指定了起点的查询只能沿链遍历
		if logGrep != "" && App.Meta != nil && len(args) == 0 {
			missing, err := unindexed(ctx)
			if err != nil {
				return err
			}
			if missing == 0 {
				return grepIndexed(cmd)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "hint: %d commit(s) are not in the metadata index, searching history instead (run 'groot reindex')\n", missing)
		}

		// 2. 确定起始点 (Start Point)
		var history iter.Seq2[repo.LogEntry, error]
		if len(args) > 0 {
			start, err := resolveCommit(ctx, args[0])
			if err != nil {
				return err
			}
			history = App.Repo.LogFrom(ctx, start)
		} else {
			if _, ok, err := App.Repo.Head(ctx); err != nil {
				return err
			} else if !ok {
				fmt.Fprintln(out, "No commits yet.")
				return nil
			}
			history = App.Repo.Log(ctx)
		}

		// 3. 遍历链表 (Traverse the Chain)
		shown := 0
		for entry, err := range history {
			if err != nil {
				return err
			}
			if logGrep != "" && !strings.Contains(entry.Commit.Message, logGrep) {
				continue
			}
			if logOneline {
				exporter.PrintOneline(out, entry.Hash, entry.Commit)
			} else {
				exporter.PrintLogEntry(out, entry.Hash, entry.Commit)
			}
			shown++
			if logLimit > 0 && shown >= logLimit {
				break
			}
		}
		return nil
	},
}

// unindexed 返回历史中还没进入元数据库的提交数
// 启用 meta.driver 之前的提交不会被自动补录
func unindexed(ctx context.Context) (int64, error) {
	indexed, err := App.Meta.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count commit index: %w", err)
	}
	var total int64
	for _, err := range App.Repo.Log(ctx) {
		if err != nil {
			return 0, err
		}
		total++
	}
	return max(total-indexed, 0), nil
}

// grepIndexed 通过元数据库搜索提交信息
func grepIndexed(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	models, err := App.Meta.SearchMessages(ctx, logGrep, logLimit)
	if err != nil {
		return fmt.Errorf("failed to search commit index: %w", err)
	}
	for _, m := range models {
		// 对象库才是事实来源，从里面取回完整的 Commit
		c, err := App.Repo.Objects().ReadCommit(ctx, types.Hash(m.Hash))
		if err != nil {
			return err
		}
		if logOneline {
			exporter.PrintOneline(out, c.ID(), c)
		} else {
			exporter.PrintLogEntry(out, c.ID(), c)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "show each commit on a single line")
	logCmd.Flags().StringVar(&logGrep, "grep", "", "only show commits whose message contains the text")
	logCmd.Flags().IntVarP(&logLimit, "max-count", "n", 0, "limit the number of commits to output")
}
