package exporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"groot/pkg/core"
	"groot/pkg/odb"
	"groot/pkg/types"
)

type Exporter struct {
	objects *odb.DB
}

func NewExporter(objects *odb.DB) *Exporter {
	return &Exporter{objects: objects}
}

// ExportFile 把 Blob 的原始内容写入 writer
func (e *Exporter) ExportFile(ctx context.Context, hash types.Hash, writer io.Writer) error {
	data, err := e.objects.Get(ctx, hash)
	if err != nil {
		return fmt.Errorf("failed to get blob: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", hash.Short(), err)
	}
	return nil
}

// PrintObject 打印对象：Commit 以结构化形式展示，Blob 只展示大小
func (e *Exporter) PrintObject(ctx context.Context, hash types.Hash, writer io.Writer) error {
	// 1. 读取原始字节 (已校验)
	data, err := e.objects.Get(ctx, hash)
	if err != nil {
		return err
	}

	// 2. 结构化对象直接打印
	ok, err := PrintStructure(data, writer)
	if err != nil || ok {
		return err
	}

	// 3. Blob
	blob := core.NewBlob(data)
	fmt.Fprintf(writer, "Type: Blob\nSize: %s\n\n", fmtSize(blob.Size()))
	fmt.Fprintf(writer, "(use 'groot cat -p %s' to print the content)\n", hash.Short())
	return nil
}

type RestoreCallback func(path string, hash types.Hash)

// RestoreCommit 将一个提交中的所有文件写回 targetDir
// 同一路径出现多次时只写第一条，与 Diff 的匹配规则一致
func (e *Exporter) RestoreCommit(ctx context.Context, commitHash types.Hash, targetDir string, onRestore RestoreCallback) error {
	// 1. 获取 Commit 对象
	c, err := e.objects.ReadCommit(ctx, commitHash)
	if err != nil {
		return fmt.Errorf("failed to get commit %s: %w", commitHash, err)
	}

	// 2. 遍历文件列表
	written := make(map[string]struct{}, len(c.Files))
	for _, f := range c.Files {
		if _, dup := written[f.Path]; dup {
			continue
		}
		written[f.Path] = struct{}{}

		fullPath, err := safeJoin(targetDir, f.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return fmt.Errorf("failed to create dir for %s: %w", f.Path, err)
		}

		// 【技巧】使用匿名函数构建一个 Scope，函数返回时立即关闭文件
		err = func() error {
			file, err := os.Create(fullPath)
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", fullPath, err)
			}
			defer file.Close()
			return e.ExportFile(ctx, f.Hash.Hash, file)
		}()
		if err != nil {
			return err
		}

		// 触发回调 (通知上层)
		if onRestore != nil {
			onRestore(f.Path, f.Hash.Hash)
		}
	}
	return nil
}

// safeJoin 拒绝写到 targetDir 之外的路径
func safeJoin(targetDir, rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("refusing to restore %q outside of %s", rel, targetDir)
	}
	return filepath.Join(targetDir, clean), nil
}
