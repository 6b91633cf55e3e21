package repo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"groot/pkg/ignore"
	"groot/pkg/index"
	"groot/pkg/types"

	"go.uber.org/zap"
)

// Stage 读取文件内容写入对象库，并把 {path, hash} 记入暂存区
// 暂存区在返回前已经落盘
func (r *Repository) Stage(ctx context.Context, path string) (types.Hash, error) {
	hash, err := r.stageFile(ctx, path)
	if err != nil {
		return "", err
	}
	if err := r.index.Save(); err != nil {
		return "", fmt.Errorf("failed to save index: %w", err)
	}
	return hash, nil
}

// StageAll 递归暂存 dir 下的所有普通文件，跳过忽略规则命中的路径
// 返回本次暂存的记录 (按遍历顺序)
func (r *Repository) StageAll(ctx context.Context, dir string) ([]index.Entry, error) {
	matcher, err := ignore.NewMatcher(r.workTree)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore rules: %w", err)
	}

	var staged []index.Entry
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err // 权限错误等
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := r.relPath(path)
		if rel != "." && matcher.Matches(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		hash, err := r.stageFile(ctx, path)
		if err != nil {
			return err
		}
		staged = append(staged, index.Entry{Path: rel, Hash: hash})
		return nil
	}

	if err := filepath.WalkDir(r.resolve(dir), walkFn); err != nil {
		return nil, fmt.Errorf("walk failed: %w", err)
	}

	// 批量落盘
	if len(staged) > 0 {
		if err := r.index.Save(); err != nil {
			return nil, fmt.Errorf("failed to save index: %w", err)
		}
	}
	return staged, nil
}

// Unstage 从暂存区移除一个路径，返回是否真的移除了
func (r *Repository) Unstage(path string) (bool, error) {
	if !r.index.Remove(r.relPath(path)) {
		return false, nil
	}
	if err := r.index.Save(); err != nil {
		return false, fmt.Errorf("failed to save index: %w", err)
	}
	return true, nil
}

// Clear 清空暂存区并落盘
func (r *Repository) Clear() error {
	r.index.Reset()
	if err := r.index.Save(); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	return nil
}

// Entries 返回当前暂存的有序记录
func (r *Repository) Entries() []index.Entry {
	return r.index.Entries()
}

// stageFile 只改内存中的暂存区，不落盘
func (r *Repository) stageFile(ctx context.Context, path string) (types.Hash, error) {
	data, err := os.ReadFile(r.resolve(path))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, err)
	}

	hash, err := r.objects.Put(ctx, data)
	if err != nil {
		return "", err
	}

	rel := r.relPath(path)
	r.index.Add(rel, hash)
	r.logger.Debug("staged file", zap.String("path", rel), zap.String("hash", hash.Short()))
	return hash, nil
}

// resolve 把相对路径解析到工作区下
func (r *Repository) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.workTree, path)
}

// relPath 计算相对工作区的路径 (斜杠分隔)
// 工作区之外的路径原样保留
func (r *Repository) relPath(path string) string {
	full := r.resolve(path)
	rel, err := filepath.Rel(r.workTree, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return index.CleanPath(path)
	}
	return index.CleanPath(rel)
}
