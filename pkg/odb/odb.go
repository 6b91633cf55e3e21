// Package odb 是仓库的对象库：在任意 storage.Store 之上提供
// 按内容寻址的 Put/Get，并在每次读取时校验 hash(content) == key。
package odb

import (
	"context"
	"errors"
	"fmt"
	"io"

	"groot/pkg/core"
	"groot/pkg/storage"
	"groot/pkg/types"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize 默认缓存的 Commit 数量
const DefaultCacheSize = 256

// DB 封装存储后端
type DB struct {
	store   storage.Store
	commits *lru.Cache[types.Hash, *core.Commit]
}

// New 创建对象库，cacheSize <= 0 时使用默认值
func New(store storage.Store, cacheSize int) (*DB, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	commits, err := lru.New[types.Hash, *core.Commit](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create commit cache: %w", err)
	}
	return &DB{store: store, commits: commits}, nil
}

// Store 暴露底层存储 (供 cat 等只读工具使用)
func (db *DB) Store() storage.Store { return db.store }

// Put 存入一段原始内容，返回它的 Hash
// 相同内容写两次，第二次是 no-op
func (db *DB) Put(ctx context.Context, content []byte) (types.Hash, error) {
	blob := core.NewBlob(content)
	if err := db.PutObject(ctx, blob); err != nil {
		return "", err
	}
	return blob.ID(), nil
}

// PutObject 存入一个已经算好 Hash 的对象
func (db *DB) PutObject(ctx context.Context, obj core.Object) error {
	if err := db.store.Put(ctx, obj); err != nil {
		return fmt.Errorf("failed to store object %s: %w", obj.ID(), err)
	}
	return nil
}

// Has 检查对象是否存在
func (db *DB) Has(ctx context.Context, hash types.Hash) (bool, error) {
	return db.store.Has(ctx, hash)
}

// Get 读取对象的原始字节
// 不存在返回 storage.ErrNotFound；读不出来或者内容和 Key 对不上返回 storage.ErrCorrupt
func (db *DB) Get(ctx context.Context, hash types.Hash) ([]byte, error) {
	if !hash.IsValid() {
		return nil, fmt.Errorf("%w: %q is not a valid hash", storage.ErrNotFound, hash)
	}

	reader, err := db.store.Get(ctx, hash)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("object %s: %w", hash, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("object %s: %w: %v", hash, storage.ErrCorrupt, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w: %v", hash, storage.ErrCorrupt, err)
	}

	// 内容寻址校验
	if got := core.CalculateBlobHash(data); got != hash {
		return nil, fmt.Errorf("object %s: %w: content hashes to %s", hash, storage.ErrCorrupt, got.Short())
	}
	return data, nil
}

// ReadCommit 读取并解码一个 Commit
// Commit 不可变，解码结果可以直接缓存
func (db *DB) ReadCommit(ctx context.Context, hash types.Hash) (*core.Commit, error) {
	if c, ok := db.commits.Get(hash); ok {
		return c, nil
	}

	data, err := db.Get(ctx, hash)
	if err != nil {
		return nil, err
	}

	c, err := core.DecodeCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w: %v", hash, storage.ErrCorrupt, err)
	}

	db.commits.Add(hash, c)
	return c, nil
}

// Expand 把短哈希扩展为完整哈希；完整哈希直接返回
func (db *DB) Expand(ctx context.Context, prefix types.HashPrefix) (types.Hash, error) {
	if h := types.Hash(prefix); h.IsValid() {
		return h, nil
	}
	return db.store.ExpandHash(ctx, prefix)
}
