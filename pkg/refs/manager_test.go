package refs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"groot/pkg/storage"
	"groot/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefFlow_Lifecycle(t *testing.T) {
	mgr := NewManager(t.TempDir())

	// 1. 初始状态应该是 NoHead
	_, err := mgr.GetHead()
	assert.ErrorIs(t, err, ErrNoHead, "空仓库应该返回 ErrNoHead")

	// 2. 空的 HEAD 文件也是 NoHead
	require.NoError(t, mgr.InitHead())
	_, err = mgr.GetHead()
	assert.ErrorIs(t, err, ErrNoHead)

	// 3. 第一次提交
	hash1 := types.Hash(strings.Repeat("1", 64))
	require.NoError(t, mgr.UpdateHead(hash1))

	got, err := mgr.GetHead()
	require.NoError(t, err)
	assert.Equal(t, hash1, got)

	// 4. InitHead 不能覆盖已有的 HEAD
	require.NoError(t, mgr.InitHead())
	got, err = mgr.GetHead()
	require.NoError(t, err)
	assert.Equal(t, hash1, got)

	// 5. 第二次提交
	hash2 := types.Hash(strings.Repeat("2", 64))
	require.NoError(t, mgr.UpdateHead(hash2))
	got, err = mgr.GetHead()
	require.NoError(t, err)
	assert.Equal(t, hash2, got)
}

func TestGetHead_TrimsNewline(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)
	hash := strings.Repeat("a", 64)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "HEAD"), []byte(hash+"\n"), 0644))

	got, err := mgr.GetHead()
	require.NoError(t, err)
	assert.Equal(t, types.Hash(hash), got)
}

func TestGetHead_Corrupted(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "HEAD"), []byte("ref: refs/heads/main"), 0644))

	_, err := mgr.GetHead()
	assert.ErrorIs(t, err, storage.ErrCorrupt)
}

func TestUpdateHead_RejectsInvalidHash(t *testing.T) {
	mgr := NewManager(t.TempDir())
	assert.Error(t, mgr.UpdateHead("short"))
}

func TestPendingMarker(t *testing.T) {
	mgr := NewManager(t.TempDir())

	_, ok, err := mgr.Pending()
	require.NoError(t, err)
	assert.False(t, ok)

	hash := types.Hash(strings.Repeat("c", 64))
	require.NoError(t, mgr.MarkPending(hash))

	got, ok, err := mgr.Pending()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, hash, got)

	require.NoError(t, mgr.ClearPending())
	_, ok, err = mgr.Pending()
	require.NoError(t, err)
	assert.False(t, ok)

	// 重复删除是幂等的
	require.NoError(t, mgr.ClearPending())
}
