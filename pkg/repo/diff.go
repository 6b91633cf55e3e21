package repo

import (
	"context"
	"fmt"

	"groot/pkg/core"
	"groot/pkg/diff"
	"groot/pkg/types"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches 限制 Diff 同时读取的 Blob 数量
const maxConcurrentFetches = 8

// FileStatus 描述一个文件相对父提交的状态
type FileStatus int

const (
	StatusRoot      FileStatus = iota // 根提交，没有可比较的旧版本
	StatusAdded                       // 父提交中没有这个路径
	StatusModified                    // 内容变了
	StatusUnchanged                   // Hash 相同
)

func (s FileStatus) String() string {
	switch s {
	case StatusRoot:
		return "root"
	case StatusAdded:
		return "added"
	case StatusModified:
		return "modified"
	default:
		return "unchanged"
	}
}

// FileDiff 是一个文件的差异
type FileDiff struct {
	Path       string
	Hash       types.Hash
	ParentHash types.Hash // Added/Root 时为空
	Status     FileStatus
	Segments   []diff.Segment
}

// Report 是一个提交相对其父提交的完整差异
type Report struct {
	Commit types.Hash
	Parent types.Hash
	// Root 为 true 表示没有父提交 (no prior state)，Files 中不带 Segments
	Root  bool
	Files []FileDiff
}

// Stats 汇总所有文件的增删行数
func (rep *Report) Stats() diff.Stats {
	var total diff.Stats
	for _, f := range rep.Files {
		st := diff.Count(f.Segments)
		total.Additions += st.Additions
		total.Deletions += st.Deletions
	}
	return total
}

// Diff 计算提交 hash 相对其父提交的行级差异
// 文件顺序与提交中的顺序一致；同一路径在父提交中有多条时取第一条
func (r *Repository) Diff(ctx context.Context, hash types.Hash) (*Report, error) {
	// 1. 读取目标提交
	c, err := r.objects.ReadCommit(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}

	report := &Report{Commit: hash, Files: make([]FileDiff, len(c.Files))}

	// 2. 根提交：只列出文件
	if c.IsRoot() {
		report.Root = true
		for i, f := range c.Files {
			report.Files[i] = FileDiff{Path: f.Path, Hash: f.Hash.Hash, Status: StatusRoot}
		}
		return report, nil
	}

	// 3. 读取父提交
	report.Parent = c.ParentHash()
	parent, err := r.objects.ReadCommit(ctx, report.Parent)
	if err != nil {
		return nil, fmt.Errorf("failed to read parent commit %s: %w", report.Parent, err)
	}

	// 4. 并发读取 Blob 并逐个计算差异，结果按下标写回，保持顺序
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, f := range c.Files {
		g.Go(func() error {
			fd, err := r.diffFile(gctx, f, parent)
			if err != nil {
				return err
			}
			report.Files[i] = fd
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Repository) diffFile(ctx context.Context, f core.FileEntry, parent *core.Commit) (FileDiff, error) {
	fd := FileDiff{Path: f.Path, Hash: f.Hash.Hash}

	newData, err := r.objects.Get(ctx, f.Hash.Hash)
	if err != nil {
		return fd, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}

	prev, ok := parent.FindFile(f.Path)
	if !ok {
		fd.Status = StatusAdded
		fd.Segments = diff.Lines("", string(newData))
		return fd, nil
	}

	fd.ParentHash = prev.Hash.Hash
	if fd.ParentHash == fd.Hash {
		fd.Status = StatusUnchanged
		fd.Segments = diff.Lines(string(newData), string(newData))
		return fd, nil
	}

	oldData, err := r.objects.Get(ctx, fd.ParentHash)
	if err != nil {
		return fd, fmt.Errorf("failed to read previous %s: %w", f.Path, err)
	}
	fd.Status = StatusModified
	fd.Segments = diff.Lines(string(oldData), string(newData))
	return fd, nil
}
