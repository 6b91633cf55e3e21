package storage

import (
	"context"
	"errors"
	"io"

	"groot/pkg/core"
	"groot/pkg/types"
)

var (
	ErrNotFound       = errors.New("object not found")
	ErrAmbiguousHash  = errors.New("ambiguous hash prefix")
	ErrPrefixTooShort = errors.New("hash prefix too short")
	// ErrCorrupt 表示对象存在但内容无法读取，或者内容与 Key 不匹配
	ErrCorrupt = errors.New("corrupt object store")
)

// Store defines the interface for a storage backend.
// Implementations can be local disk, an embedded KV store, or S3-compatible object storage.
// Keys are content hashes, so every implementation must treat Put as idempotent.
type Store interface {
	// Put 将一个对象持久化
	// 它不需要返回 Hash，因为 Hash 已经在 core.Object 里了
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取原始数据，不存在时返回 ErrNotFound
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (用于去重逻辑)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把短哈希扩展成完整哈希
	ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error)
}
