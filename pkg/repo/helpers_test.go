package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"groot/pkg/core"
	"groot/pkg/types"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 通用辅助函数 (Helpers)
// -----------------------------------------------------------------------------

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// tickingClock 每调用一次前进一秒，保证提交时间单调
func tickingClock() func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return fixedTime.Add(time.Duration(n) * time.Second)
	}
}

// setupRepo 在临时目录中初始化并打开一个仓库
func setupRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	root := t.TempDir()
	_, err := Init(root)
	require.NoError(t, err)
	return mustOpen(t, root, Options{}), root
}

func mustOpen(t *testing.T, root string, opts Options) *Repository {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = tickingClock()
	}
	r, err := Open(context.Background(), root, opts)
	require.NoError(t, err)
	return r
}

// writeFile 在工作区写入文件 (自动创建父目录)
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0644))
}

// mustCommit 写文件 -> 暂存 -> 提交
func mustCommit(t *testing.T, r *Repository, msg string, files map[string]string) types.Hash {
	t.Helper()
	ctx := context.Background()
	for path, content := range files {
		writeFile(t, r.WorkTree(), path, content)
		_, err := r.Stage(ctx, path)
		require.NoError(t, err)
	}
	h, err := r.Commit(ctx, msg)
	require.NoError(t, err)
	return h
}

func blobHash(content string) types.Hash {
	return core.CalculateBlobHash([]byte(content))
}

// collectLog 把惰性序列读完
func collectLog(t *testing.T, r *Repository) ([]LogEntry, error) {
	t.Helper()
	var out []LogEntry
	for entry, err := range r.Log(context.Background()) {
		if err != nil {
			return out, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// spyIndexer 记录收到的提交
type spyIndexer struct {
	seen []types.Hash
	err  error
}

func (s *spyIndexer) IndexCommit(ctx context.Context, c *core.Commit) error {
	s.seen = append(s.seen, c.ID())
	return s.err
}
