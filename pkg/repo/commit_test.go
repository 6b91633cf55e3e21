package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"groot/pkg/core"
	"groot/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_NotRepository(t *testing.T) {
	_, err := Open(context.Background(), t.TempDir(), Options{})
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestInit_Twice(t *testing.T) {
	root := t.TempDir()

	created, err := Init(root)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = Init(root)
	require.NoError(t, err)
	assert.False(t, created)

	assert.DirExists(t, filepath.Join(root, DirName, "objects"))
	assert.FileExists(t, filepath.Join(root, DirName, "HEAD"))
}

func TestHead_EmptyRepository(t *testing.T) {
	r, _ := setupRepo(t)

	h, ok, err := r.Head(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, h.IsZero())
}

func TestCommit_FirstCommit(t *testing.T) {
	r, root := setupRepo(t)
	ctx := context.Background()

	c1 := mustCommit(t, r, "first", map[string]string{"a.txt": "hello\n"})

	// 1. HEAD 指向新提交，暂存区清空
	head, ok, err := r.Head(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c1, head)
	assert.Empty(t, r.Entries())
	assert.NoFileExists(t, filepath.Join(root, DirName, "COMMIT_PENDING"))

	// 2. 提交内容
	c, err := r.Objects().ReadCommit(ctx, c1)
	require.NoError(t, err)
	assert.True(t, c.IsRoot())
	assert.Equal(t, "first", c.Message)
	require.Len(t, c.Files, 1)
	assert.Equal(t, "a.txt", c.Files[0].Path)
	assert.Equal(t, blobHash("hello\n"), c.Files[0].Hash.Hash)
}

func TestCommit_ChainsParent(t *testing.T) {
	r, _ := setupRepo(t)
	ctx := context.Background()

	c1 := mustCommit(t, r, "first", map[string]string{"a.txt": "hello\n"})
	c2 := mustCommit(t, r, "second", map[string]string{"a.txt": "hello\nworld\n"})

	c, err := r.Objects().ReadCommit(ctx, c2)
	require.NoError(t, err)
	assert.Equal(t, c1, c.ParentHash())

	// 只包含本次暂存的文件
	require.Len(t, c.Files, 1)
	assert.Equal(t, blobHash("hello\nworld\n"), c.Files[0].Hash.Hash)
}

func TestCommit_EmptyStagingAllowed(t *testing.T) {
	r, _ := setupRepo(t)

	h, err := r.Commit(context.Background(), "nothing")
	require.NoError(t, err)

	c, err := r.Objects().ReadCommit(context.Background(), h)
	require.NoError(t, err)
	assert.Empty(t, c.Files)
}

func TestCommit_Immutable(t *testing.T) {
	r, root := setupRepo(t)
	ctx := context.Background()

	c1 := mustCommit(t, r, "first", map[string]string{"a.txt": "hello\n"})
	before, err := r.Objects().Get(ctx, c1)
	require.NoError(t, err)

	mustCommit(t, r, "second", map[string]string{"a.txt": "changed\n", "b.txt": "b\n"})

	// 用新的句柄 (没有缓存) 重新读取
	after, err := mustOpen(t, root, Options{}).Objects().Get(ctx, c1)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCommit_NotifiesIndexer(t *testing.T) {
	root := t.TempDir()
	_, err := Init(root)
	require.NoError(t, err)

	spy := &spyIndexer{}
	r := mustOpen(t, root, Options{Indexer: spy})
	h := mustCommit(t, r, "indexed", map[string]string{"a.txt": "a\n"})
	assert.Equal(t, []types.Hash{h}, spy.seen)
}

func TestCommit_IndexerFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	_, err := Init(root)
	require.NoError(t, err)

	spy := &spyIndexer{err: errors.New("db down")}
	r := mustOpen(t, root, Options{Indexer: spy})
	h := mustCommit(t, r, "still committed", map[string]string{"a.txt": "a\n"})

	head, _, err := r.Head(context.Background())
	require.NoError(t, err)
	assert.Equal(t, h, head)
}

// -----------------------------------------------------------------------------
// 恢复 (提交中途崩溃)
// -----------------------------------------------------------------------------

// crashAfterStore 模拟在写入 Commit 对象之后、移动 HEAD 之前崩溃
func crashAfterStore(t *testing.T, r *Repository) types.Hash {
	t.Helper()
	ctx := context.Background()

	parent, _, err := r.Head(ctx)
	require.NoError(t, err)

	var files []core.FileEntry
	for _, e := range r.Entries() {
		files = append(files, core.NewFileEntry(e.Path, e.Hash))
	}
	c, err := core.NewCommitAt(parent, "interrupted", files, fixedTime)
	require.NoError(t, err)

	require.NoError(t, r.refs.MarkPending(c.ID()))
	require.NoError(t, r.objects.PutObject(ctx, c))
	return c.ID()
}

func TestRecover_AdvancesHeadAndClearsIndex(t *testing.T) {
	r, root := setupRepo(t)
	ctx := context.Background()
	parent := mustCommit(t, r, "first", map[string]string{"a.txt": "a\n"})

	writeFile(t, root, "b.txt", "b\n")
	_, err := r.Stage(ctx, "b.txt")
	require.NoError(t, err)
	pending := crashAfterStore(t, r)

	// 重新打开触发恢复
	recovered := mustOpen(t, root, Options{})

	head, _, err := recovered.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending, head)
	assert.Empty(t, recovered.Entries())
	assert.NoFileExists(t, filepath.Join(root, DirName, "COMMIT_PENDING"))

	c, err := recovered.Objects().ReadCommit(ctx, head)
	require.NoError(t, err)
	assert.Equal(t, parent, c.ParentHash())
}

func TestRecover_HeadAlreadyMoved(t *testing.T) {
	r, root := setupRepo(t)
	ctx := context.Background()

	writeFile(t, root, "a.txt", "a\n")
	_, err := r.Stage(ctx, "a.txt")
	require.NoError(t, err)
	pending := crashAfterStore(t, r)
	require.NoError(t, r.refs.UpdateHead(pending))

	recovered := mustOpen(t, root, Options{})

	head, _, err := recovered.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending, head)
	assert.Empty(t, recovered.Entries())
}

func TestRecover_DiscardsMarkerForMissingObject(t *testing.T) {
	r, root := setupRepo(t)
	ctx := context.Background()
	c1 := mustCommit(t, r, "first", map[string]string{"a.txt": "a\n"})

	writeFile(t, root, "b.txt", "b\n")
	_, err := r.Stage(ctx, "b.txt")
	require.NoError(t, err)
	require.NoError(t, r.refs.MarkPending(blobHash("never stored")))

	recovered := mustOpen(t, root, Options{})

	head, _, err := recovered.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, c1, head, "HEAD must not move")
	assert.Len(t, recovered.Entries(), 1, "staging must be kept")
	_, statErr := os.Stat(filepath.Join(root, DirName, "COMMIT_PENDING"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecover_KeepsUnrelatedStaging(t *testing.T) {
	r, root := setupRepo(t)
	ctx := context.Background()

	writeFile(t, root, "a.txt", "a\n")
	_, err := r.Stage(ctx, "a.txt")
	require.NoError(t, err)
	pending := crashAfterStore(t, r)

	// 崩溃之后用户又暂存了别的东西
	writeFile(t, root, "c.txt", "c\n")
	_, err = r.Stage(ctx, "c.txt")
	require.NoError(t, err)

	recovered := mustOpen(t, root, Options{})

	head, _, err := recovered.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, pending, head)
	assert.Len(t, recovered.Entries(), 2)
}
