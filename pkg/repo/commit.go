package repo

import (
	"context"
	"errors"
	"fmt"

	"groot/pkg/core"
	"groot/pkg/index"
	"groot/pkg/refs"
	"groot/pkg/types"

	"go.uber.org/zap"
)

// Head 返回当前 HEAD；新仓库返回 ("", false, nil)
func (r *Repository) Head(ctx context.Context) (types.Hash, bool, error) {
	h, err := r.refs.GetHead()
	if errors.Is(err, refs.ErrNoHead) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return h, true, nil
}

// Commit 把暂存区打包成一个新的提交，推进 HEAD 并清空暂存区
// 暂存区为空时也会生成提交 (由调用方决定是否允许)
func (r *Repository) Commit(ctx context.Context, message string) (types.Hash, error) {
	// 1. 暂存区 -> 文件列表
	entries := r.index.Entries()
	files := make([]core.FileEntry, len(entries))
	for i, e := range entries {
		files[i] = core.NewFileEntry(e.Path, e.Hash)
	}

	// 2. 父节点 (HEAD)
	parent, _, err := r.Head(ctx)
	if err != nil {
		return "", err
	}

	// 3. 构建 Commit 对象
	c, err := core.NewCommitAt(parent, message, files, r.now())
	if err != nil {
		return "", fmt.Errorf("failed to create commit object: %w", err)
	}
	hash := c.ID()

	// 4. 写恢复标记，之后的任何中断都可以在下次 Open 时补完
	if err := r.refs.MarkPending(hash); err != nil {
		return "", err
	}

	// 5. 持久化 Commit 对象
	if err := r.objects.PutObject(ctx, c); err != nil {
		if cerr := r.refs.ClearPending(); cerr != nil {
			r.logger.Warn("failed to drop commit marker", zap.Error(cerr))
		}
		return "", fmt.Errorf("failed to store commit: %w", err)
	}

	// 6. 移动 HEAD
	if err := r.refs.UpdateHead(hash); err != nil {
		return "", err
	}

	// 7. 清空暂存区
	if err := r.Clear(); err != nil {
		return "", err
	}

	// 8. 提交完成
	if err := r.refs.ClearPending(); err != nil {
		return "", err
	}
	r.logger.Info("committed",
		zap.String("hash", hash.Short()),
		zap.String("parent", parent.Short()),
		zap.Int("files", len(files)),
	)

	// 9. 投影到元数据索引，失败不影响提交本身
	if r.indexer != nil {
		if err := r.indexer.IndexCommit(ctx, c); err != nil {
			r.logger.Warn("failed to index commit", zap.String("hash", hash.Short()), zap.Error(err))
		}
	}
	return hash, nil
}

// Recover 完成上一次被中断的提交
// 标记指向的对象不存在时说明提交没有写成，直接丢弃标记
func (r *Repository) Recover(ctx context.Context) error {
	pending, ok, err := r.refs.Pending()
	if err != nil || !ok {
		return err
	}

	c, err := r.objects.ReadCommit(ctx, pending)
	if err != nil {
		r.logger.Warn("discarding commit marker", zap.String("hash", pending.Short()), zap.Error(err))
		return r.refs.ClearPending()
	}

	// 1. HEAD 还停在父节点上 -> 推进
	head, _, err := r.Head(ctx)
	if err != nil {
		return err
	}
	if head == c.ParentHash() {
		if err := r.refs.UpdateHead(pending); err != nil {
			return err
		}
		r.logger.Info("recovered HEAD", zap.String("hash", pending.Short()))
	}

	// 2. 暂存区内容就是这个提交 -> 清空
	if sameFiles(r.index.Entries(), c.Files) && !r.index.IsEmpty() {
		if err := r.Clear(); err != nil {
			return err
		}
		r.logger.Info("recovered index", zap.String("hash", pending.Short()))
	}

	return r.refs.ClearPending()
}

func sameFiles(entries []index.Entry, files []core.FileEntry) bool {
	if len(entries) != len(files) {
		return false
	}
	for i, e := range entries {
		if e.Path != files[i].Path || e.Hash != files[i].Hash.Hash {
			return false
		}
	}
	return true
}
