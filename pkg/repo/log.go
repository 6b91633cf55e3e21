package repo

import (
	"context"
	"fmt"
	"iter"

	"groot/pkg/core"
	"groot/pkg/types"
)

// LogEntry 是历史中的一个节点
type LogEntry struct {
	Hash   types.Hash
	Commit *core.Commit
}

// Log 从 HEAD 开始沿 parent 链惰性遍历历史，新仓库得到空序列
func (r *Repository) Log(ctx context.Context) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		head, ok, err := r.Head(ctx)
		if err != nil {
			yield(LogEntry{}, err)
			return
		}
		if !ok {
			return
		}
		r.walk(ctx, head, yield)
	}
}

// LogFrom 从指定提交开始遍历
func (r *Repository) LogFrom(ctx context.Context, start types.Hash) iter.Seq2[LogEntry, error] {
	return func(yield func(LogEntry, error) bool) {
		r.walk(ctx, start, yield)
	}
}

// walk 逐个读取 Commit，直到根提交 (parent 为 null)
// 父节点读不出来、或者同一个 Hash 出现两次，都视为历史损坏并终止
func (r *Repository) walk(ctx context.Context, start types.Hash, yield func(LogEntry, error) bool) {
	seen := make(map[types.Hash]struct{})
	current := start

	for {
		if err := ctx.Err(); err != nil {
			yield(LogEntry{}, err)
			return
		}

		c, err := r.objects.ReadCommit(ctx, current)
		if err != nil {
			if current == start {
				yield(LogEntry{}, fmt.Errorf("failed to read commit %s: %w", current, err))
			} else {
				yield(LogEntry{}, fmt.Errorf("%w: parent %s cannot be resolved: %w", ErrCorruptHistory, current, err))
			}
			return
		}
		seen[current] = struct{}{}

		if !yield(LogEntry{Hash: current, Commit: c}, nil) {
			return
		}

		// 到达根提交
		if c.IsRoot() {
			return
		}
		current = c.ParentHash()
		if _, dup := seen[current]; dup {
			yield(LogEntry{}, fmt.Errorf("%w: cycle at %s", ErrCorruptHistory, current))
			return
		}
	}
}
