package exporter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"groot/pkg/core"
	"groot/pkg/diff"
	"groot/pkg/repo"
	"groot/pkg/types"

	"github.com/fatih/color"
)

var (
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	faint  = color.New(color.Faint)
	bold   = color.New(color.Bold)
)

// PrintStructure 解析并打印结构化对象 (Commit)
// 如果是原始数据(Blob)，返回 false，由调用者决定如何展示
func PrintStructure(data []byte, w io.Writer) (bool, error) {
	// 1. 探测类型，解不出头部的都是 Blob
	if core.DetectType(data) != core.TypeCommit {
		return false, nil
	}

	// 2. 严格解码
	c, err := core.DecodeCommit(data)
	if err != nil {
		// 巧合地长得像 Commit 的 Blob
		return false, nil
	}
	return true, printCommit(c, w)
}

func printCommit(c *core.Commit, w io.Writer) error {
	fmt.Fprintf(w, "Type:    Commit\n")
	fmt.Fprintf(w, "Hash:    %s\n", c.ID())
	if c.IsRoot() {
		fmt.Fprintf(w, "Parent:  (none)\n")
	} else {
		fmt.Fprintf(w, "Parent:  %s\n", c.ParentHash())
	}
	fmt.Fprintf(w, "Date:    %s\n", c.Date)
	fmt.Fprintf(w, "\n%s\n\n", c.Message)

	// 使用 tabwriter 对齐输出 (像 git ls-tree)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "HASH\tPATH\n")
	for _, f := range c.Files {
		fmt.Fprintf(tw, "%s\t%s\n", f.Hash.Hash.Short(), f.Path)
	}
	return tw.Flush()
}

// PrintLogEntry 格式化输出一条历史 (仿 Git 格式)
func PrintLogEntry(w io.Writer, hash types.Hash, c *core.Commit) {
	yellow.Fprintf(w, "commit %s\n", hash)
	fmt.Fprintf(w, "Date:   %s\n", c.Time().Local().Format(time.RFC1123))
	fmt.Fprintf(w, "Files:  %d\n", len(c.Files))
	fmt.Fprintf(w, "\n    %s\n\n", c.Message)
}

// PrintOneline 单行格式: <short> <message>
func PrintOneline(w io.Writer, hash types.Hash, c *core.Commit) {
	yellow.Fprint(w, hash.Short())
	fmt.Fprintf(w, " %s\n", firstLine(c.Message))
}

// PrintDiff 输出一个提交的差异报告
// 新增为绿色，删除为红色，未变化的行变暗
func PrintDiff(w io.Writer, rep *repo.Report) {
	yellow.Fprintf(w, "commit %s\n", rep.Commit)

	if rep.Root {
		fmt.Fprintf(w, "Root commit: no prior state\n")
		for _, f := range rep.Files {
			fmt.Fprintf(w, "  %s  %s\n", f.Hash.Short(), f.Path)
		}
		return
	}

	for _, f := range rep.Files {
		bold.Fprintf(w, "\n--- %s (%s)\n", f.Path, f.Status)
		if f.Status == repo.StatusUnchanged {
			continue
		}
		for _, seg := range f.Segments {
			printSegment(w, seg)
		}
	}

	st := rep.Stats()
	fmt.Fprintf(w, "\n%d file(s), ", len(rep.Files))
	green.Fprintf(w, "+%d", st.Additions)
	fmt.Fprint(w, " ")
	red.Fprintf(w, "-%d", st.Deletions)
	fmt.Fprintln(w)
}

func printSegment(w io.Writer, seg diff.Segment) {
	var (
		prefix string
		c      *color.Color
	)
	switch seg.Op {
	case diff.Added:
		prefix, c = "+ ", green
	case diff.Removed:
		prefix, c = "- ", red
	default:
		prefix, c = "  ", faint
	}

	for _, line := range diff.SplitLines(seg.Text) {
		c.Fprint(w, prefix+strings.TrimSuffix(line, "\n"))
		fmt.Fprintln(w)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func fmtSize(s int64) string {
	if s < 1024 {
		return fmt.Sprintf("%dB", s)
	} else if s < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(s)/1024)
	}
	return fmt.Sprintf("%.2fMB", float64(s)/1024/1024)
}
