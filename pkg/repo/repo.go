// Package repo 把对象库、暂存区和引用组装成一个仓库句柄。
//
// 所有核心操作 (Stage / Commit / Log / Diff) 都挂在 Repository 上，
// 不存在进程级的全局状态，同一进程里可以同时打开多个仓库。
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"groot/pkg/core"
	"groot/pkg/index"
	"groot/pkg/logging"
	"groot/pkg/odb"
	"groot/pkg/refs"
	"groot/pkg/storage"
	"groot/pkg/storage/disk"

	"go.uber.org/zap"
)

// DirName 是仓库元数据目录
const DirName = ".groot"

var (
	ErrNotRepository  = errors.New("not a groot repository")
	ErrFileNotFound   = errors.New("file not found")
	ErrCorruptHistory = errors.New("corrupt history")
)

// CommitIndexer 接收每一个成功的提交 (例如写入元数据库)
type CommitIndexer interface {
	IndexCommit(ctx context.Context, c *core.Commit) error
}

// Options 控制 Open 的装配方式，零值即可用
type Options struct {
	// Store 为 nil 时使用 .groot/objects 下的磁盘存储
	Store     storage.Store
	CacheSize int
	Indexer   CommitIndexer
	Logger    *zap.Logger
	// Clock 为 nil 时使用 time.Now
	Clock func() time.Time
}

// Repository 是一个打开的仓库
type Repository struct {
	workTree string
	dir      string

	objects *odb.DB
	index   *index.Index
	refs    *refs.Manager

	indexer CommitIndexer
	logger  *zap.Logger
	now     func() time.Time
}

// Layout 返回工作区 root 对应的元数据目录
func Layout(root string) string {
	return filepath.Join(root, DirName)
}

// Exists 检查 root 下是否有仓库，没有时返回 ErrNotRepository
func Exists(root string) error {
	fi, err := os.Stat(Layout(root))
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotRepository, root)
	}
	return nil
}

// Init 在 root 下创建仓库目录结构
// 已经存在时只补齐缺失的部分，返回 false
func Init(root string) (bool, error) {
	dir := Layout(root)

	// 1. 检查是否已存在
	created := true
	if _, err := os.Stat(dir); err == nil {
		created = false
	}

	// 2. 创建目录结构
	if err := os.MkdirAll(filepath.Join(dir, "objects"), 0755); err != nil {
		return false, fmt.Errorf("failed to create repo directory: %w", err)
	}

	// 3. 空的 HEAD 和空的暂存区
	if err := refs.NewManager(dir).InitHead(); err != nil {
		return false, err
	}
	indexPath := filepath.Join(dir, "index")
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		idx, err := index.NewIndex(indexPath)
		if err != nil {
			return false, err
		}
		if err := idx.Save(); err != nil {
			return false, fmt.Errorf("failed to create index: %w", err)
		}
	}
	return created, nil
}

// Open 打开 root 下的仓库，并完成上一次被中断的提交
func Open(ctx context.Context, root string, opts Options) (*Repository, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := Exists(root); err != nil {
		return nil, err
	}
	dir := Layout(root)

	// 1. 存储层 (依赖注入，默认磁盘)
	store := opts.Store
	if store == nil {
		store, err = disk.NewAdapter(filepath.Join(dir, "objects"))
		if err != nil {
			return nil, fmt.Errorf("failed to init storage: %w", err)
		}
	}
	objects, err := odb.New(store, opts.CacheSize)
	if err != nil {
		return nil, err
	}

	// 2. 暂存区
	idx, err := index.NewIndex(filepath.Join(dir, "index"))
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	r := &Repository{
		workTree: root,
		dir:      dir,
		objects:  objects,
		index:    idx,
		refs:     refs.NewManager(dir),
		indexer:  opts.Indexer,
		logger:   logging.OrNop(opts.Logger),
		now:      opts.Clock,
	}
	if r.now == nil {
		r.now = time.Now
	}

	// 3. 恢复
	if err := r.Recover(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// WorkTree 工作区根目录
func (r *Repository) WorkTree() string { return r.workTree }

// Dir 元数据目录 (.groot)
func (r *Repository) Dir() string { return r.dir }

// Objects 暴露对象库 (cat 等只读命令使用)
func (r *Repository) Objects() *odb.DB { return r.objects }
