package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"groot/pkg/core"
	"groot/pkg/storage"
	"groot/pkg/types"
)

// Adapter 实现了 storage.Store 接口
// 布局是扁平的：每个对象一个文件，文件名就是 Hash
type Adapter struct {
	rootPath string // 比如: /home/user/project/.groot/objects
}

// NewAdapter 创建一个新的磁盘存储适配器
func NewAdapter(root string) (*Adapter, error) {
	// 确保根目录存在
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage dir: %w", err)
	}
	return &Adapter{rootPath: root}, nil
}

// layout 返回哈希对应的物理路径
func (s *Adapter) layout(hash types.Hash) string {
	return filepath.Join(s.rootPath, string(hash))
}

func (s *Adapter) Put(ctx context.Context, obj core.Object) error {
	hash := obj.ID()
	if !hash.IsValid() {
		return fmt.Errorf("refusing to store object with invalid hash %q", hash)
	}
	targetPath := s.layout(hash)

	// 1. 检查是否存在 (幂等性)
	if _, err := os.Stat(targetPath); err == nil {
		return nil // 已经存在，直接跳过 (CAS 的好处)
	}

	// 2. 原子写入 (Atomic Write)
	// 先写到一个临时文件，然后 Rename。
	// 这样保证要么文件不存在，要么文件是完整的。
	tempFile, err := os.CreateTemp(s.rootPath, "temp-*")
	if err != nil {
		return err
	}
	// 确保临时文件会被清理（如果成功 Rename 了，这个删除会失效，或者无害）
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(obj.Bytes()); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil { // 必须先关闭才能 Rename
		return err
	}

	// 3. 移动到最终位置
	return os.Rename(tempFile.Name(), targetPath)
}

func (s *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	if !hash.IsValid() {
		return nil, storage.ErrNotFound
	}
	f, err := os.Open(s.layout(hash))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	if !hash.IsValid() {
		return false, nil
	}
	_, err := os.Stat(s.layout(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandHash 扫描对象目录，找出唯一匹配前缀的对象
func (s *Adapter) ExpandHash(ctx context.Context, short types.HashPrefix) (types.Hash, error) {
	prefix := strings.ToLower(short.String())
	if len(prefix) < types.MinPrefixLen {
		return "", storage.ErrPrefixTooShort
	}

	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to list objects: %w", err)
	}

	var found types.Hash
	for _, e := range entries {
		name := types.Hash(e.Name())
		// 跳过临时文件和其他杂项
		if e.IsDir() || !name.IsValid() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		if !found.IsZero() {
			return "", fmt.Errorf("%w: %s", storage.ErrAmbiguousHash, prefix)
		}
		found = name
	}

	if found.IsZero() {
		return "", fmt.Errorf("%w: %s", storage.ErrNotFound, prefix)
	}
	return found, nil
}
