// pkg/index/index.go
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"groot/pkg/storage"
	"groot/pkg/types"

	"github.com/google/renameio"
)

// Entry 代表暂存区中的一条记录
type Entry struct {
	Path string     `json:"path"` // 相对路径 (如 "docs/readme.md")
	Hash types.Hash `json:"hash"` // Blob 的 Hash
}

// Index 管理暂存区状态
// 每个路径最多一条记录：重复暂存同一路径时原地替换 Hash (last write wins)，
// 保持第一次暂存时的顺序
type Index struct {
	path    string // 物理文件路径 (.groot/index)
	entries []Entry
	mu      sync.RWMutex
}

// NewIndex 加载或创建一个新的 Index
func NewIndex(indexPath string) (*Index, error) {
	idx := &Index{path: indexPath}

	data, err := os.ReadFile(indexPath)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	// 空文件等价于空列表
	if len(data) == 0 {
		return idx, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: index file %s: %v", storage.ErrCorrupt, indexPath, err)
	}
	for i, e := range entries {
		if e.Path == "" || !e.Hash.IsValid() {
			return nil, fmt.Errorf("%w: index entry #%d is malformed", storage.ErrCorrupt, i)
		}
	}
	idx.entries = entries
	return idx, nil
}

// Add 记录一个文件，返回 true 表示是新路径，false 表示替换了已有记录
func (i *Index) Add(path string, hash types.Hash) bool {
	key := CleanPath(path) // 统一清洗
	i.mu.Lock()
	defer i.mu.Unlock()

	for n := range i.entries {
		if i.entries[n].Path == key {
			i.entries[n].Hash = hash
			return false
		}
	}
	i.entries = append(i.entries, Entry{Path: key, Hash: hash})
	return true
}

// Remove 删除一条记录，返回是否真的删除了
func (i *Index) Remove(path string) bool {
	key := CleanPath(path)
	i.mu.Lock()
	defer i.mu.Unlock()

	before := len(i.entries)
	i.entries = slices.DeleteFunc(i.entries, func(e Entry) bool { return e.Path == key })
	return len(i.entries) != before
}

// Save 将暂存区原子地持久化到磁盘
func (i *Index) Save() error {
	i.mu.RLock()
	defer i.mu.RUnlock()

	entries := i.entries
	if entries == nil {
		entries = []Entry{} // 空列表写成 []，而不是 null
	}

	// 格式化输出 (Indented)，方便人工排查
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(i.path), 0755); err != nil {
		return err
	}
	return renameio.WriteFile(i.path, data, 0644)
}

// Entries 返回当前记录的有序副本
func (i *Index) Entries() []Entry {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.entries)
}

// Reset 清空暂存区 (仅内存，需要 Save 落盘)
func (i *Index) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = nil
}

// IsEmpty 检查暂存区是否有内容
func (i *Index) IsEmpty() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries) == 0
}

// Len 暂存的文件数量
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

func CleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
