package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"groot/pkg/storage"
	"groot/pkg/types"

	"github.com/google/renameio"
)

var ErrNoHead = errors.New("HEAD not found (no commits yet)")

const (
	headFile    = "HEAD"
	pendingFile = "COMMIT_PENDING"
)

// Manager 负责管理引用 (Refs)：HEAD，以及提交过程中的恢复标记
type Manager struct {
	rootPath string
}

func NewManager(rootPath string) *Manager {
	return &Manager{rootPath: rootPath}
}

// headPath 返回 .groot/HEAD 的物理路径
func (m *Manager) headPath() string {
	return filepath.Join(m.rootPath, headFile)
}

func (m *Manager) pendingPath() string {
	return filepath.Join(m.rootPath, pendingFile)
}

// GetHead 读取当前的 Commit Hash
// 如果是新仓库（没提交过，HEAD 不存在或为空），返回 ErrNoHead
func (m *Manager) GetHead() (types.Hash, error) {
	return m.readHashFile(m.headPath(), ErrNoHead)
}

// UpdateHead 原子地更新 HEAD 到新的 Commit Hash
func (m *Manager) UpdateHead(commitHash types.Hash) error {
	if !commitHash.IsValid() {
		return fmt.Errorf("refusing to point HEAD at invalid hash %q", commitHash)
	}
	if err := renameio.WriteFile(m.headPath(), []byte(commitHash), 0644); err != nil {
		return fmt.Errorf("failed to write HEAD: %w", err)
	}
	return nil
}

// InitHead 创建空的 HEAD 文件，已存在时不动它
func (m *Manager) InitHead() error {
	f, err := os.OpenFile(m.headPath(), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create HEAD: %w", err)
	}
	return f.Close()
}

// MarkPending 在提交开始前记下即将生效的 Commit
func (m *Manager) MarkPending(commitHash types.Hash) error {
	if err := renameio.WriteFile(m.pendingPath(), []byte(commitHash), 0644); err != nil {
		return fmt.Errorf("failed to write commit marker: %w", err)
	}
	return nil
}

// Pending 读取未完成的提交标记；没有标记时返回 ("", false, nil)
func (m *Manager) Pending() (types.Hash, bool, error) {
	errNone := errors.New("no pending commit")
	h, err := m.readHashFile(m.pendingPath(), errNone)
	if errors.Is(err, errNone) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return h, true, nil
}

// ClearPending 删除提交标记
func (m *Manager) ClearPending() error {
	err := os.Remove(m.pendingPath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove commit marker: %w", err)
	}
	return nil
}

func (m *Manager) readHashFile(path string, missing error) (types.Hash, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", missing
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	// 清理换行符 (vim 编辑时可能会自动加 \n)
	h := types.Hash(strings.TrimSpace(string(data)))
	if h.IsZero() {
		return "", missing
	}
	if !h.IsValid() {
		return "", fmt.Errorf("%w: %s contains %q", storage.ErrCorrupt, filepath.Base(path), h)
	}
	return h, nil
}
