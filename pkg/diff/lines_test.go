package diff

import (
	"fmt"
	"math/rand"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\nb", []string{"a\n", "b"}},
		{"a\n\nb\n", []string{"a\n", "\n", "b\n"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLines(tt.input), "input %q", tt.input)
	}
}

func TestLines(t *testing.T) {
	tests := []struct {
		name string
		old  string
		new  string
		want []Segment
	}{
		{
			name: "Append line",
			old:  "hello\n",
			new:  "hello\nworld\n",
			want: []Segment{
				{Op: Unchanged, Text: "hello\n", Lines: 1},
				{Op: Added, Text: "world\n", Lines: 1},
			},
		},
		{
			name: "Identical",
			old:  "a\nb\n",
			new:  "a\nb\n",
			want: []Segment{{Op: Unchanged, Text: "a\nb\n", Lines: 2}},
		},
		{
			name: "Both empty",
			old:  "",
			new:  "",
			want: nil,
		},
		{
			name: "New file",
			old:  "",
			new:  "x\ny\n",
			want: []Segment{{Op: Added, Text: "x\ny\n", Lines: 2}},
		},
		{
			name: "Deleted content",
			old:  "x\ny\n",
			new:  "",
			want: []Segment{{Op: Removed, Text: "x\ny\n", Lines: 2}},
		},
		{
			name: "Replace middle line",
			old:  "a\nb\nc\n",
			new:  "a\nB\nc\n",
			want: []Segment{
				{Op: Unchanged, Text: "a\n", Lines: 1},
				{Op: Removed, Text: "b\n", Lines: 1},
				{Op: Added, Text: "B\n", Lines: 1},
				{Op: Unchanged, Text: "c\n", Lines: 1},
			},
		},
		{
			name: "Missing trailing newline",
			old:  "a\nb",
			new:  "a\nb\n",
			want: []Segment{
				{Op: Unchanged, Text: "a\n", Lines: 1},
				{Op: Removed, Text: "b", Lines: 1},
				{Op: Added, Text: "b\n", Lines: 1},
			},
		},
		{
			name: "Removed before added in block",
			old:  "keep\nx\ny\nkeep2\n",
			new:  "keep\np\nq\nkeep2\n",
			want: []Segment{
				{Op: Unchanged, Text: "keep\n", Lines: 1},
				{Op: Removed, Text: "x\ny\n", Lines: 2},
				{Op: Added, Text: "p\nq\n", Lines: 2},
				{Op: Unchanged, Text: "keep2\n", Lines: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lines(tt.old, tt.new)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.old, OldText(got))
			assert.Equal(t, tt.new, NewText(got))
		})
	}
}

func TestLines_UsesLongestCommonSubsequence(t *testing.T) {
	// LCS("a b c d", "b c d e") = "b c d"
	segs := Lines("a\nb\nc\nd\n", "b\nc\nd\ne\n")
	st := Count(segs)
	assert.Equal(t, 1, st.Additions)
	assert.Equal(t, 1, st.Deletions)
}

// randomText 从一个很小的字母表里生成文本，保证两段文本之间有大量公共行
func randomText(r *rand.Rand) string {
	alphabet := []string{"a\n", "b\n", "c\n", "d\n", "\n", "e"}
	n := r.Intn(12)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		line := alphabet[r.Intn(len(alphabet))]
		// 没有换行符的行只能出现在末尾
		if !strings.HasSuffix(line, "\n") && i != n-1 {
			line += "\n"
		}
		sb.WriteString(line)
	}
	return sb.String()
}

func TestLines_Reconstruction_Property(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		a, b := randomText(r), randomText(r)
		segs := Lines(a, b)

		if !assert.Equal(t, a, OldText(segs), "old %q new %q", a, b) {
			return
		}
		if !assert.Equal(t, b, NewText(segs), "old %q new %q", a, b) {
			return
		}

		// 相邻片段的标记不能相同 (已合并)，且每个片段都由完整的行组成
		for k, s := range segs {
			if k > 0 {
				assert.NotEqual(t, segs[k-1].Op, s.Op)
			}
			assert.Len(t, SplitLines(s.Text), s.Lines)
		}
	}
}

// lcsLen 用朴素 DP 求两组行的 LCS 长度，只给小输入做对照
func lcsLen(a, b []string) int {
	prev := make([]int, len(b)+1)
	for i := range a {
		cur := make([]int, len(b)+1)
		for j := range b {
			if a[i] == b[j] {
				cur[j+1] = prev[j] + 1
			} else {
				cur[j+1] = max(prev[j+1], cur[j])
			}
		}
		prev = cur
	}
	return prev[len(b)]
}

func TestLines_Minimal_Property(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		a, b := randomText(r), randomText(r)
		segs := Lines(a, b)

		// 未变更的行数必须等于 LCS 长度
		kept := 0
		for _, s := range segs {
			if s.Op == Unchanged {
				kept += s.Lines
			}
		}
		if !assert.Equal(t, lcsLen(SplitLines(a), SplitLines(b)), kept, "old %q new %q", a, b) {
			return
		}
	}
}

func numbered(prefix string, n int, shared func(i int) bool) string {
	var sb strings.Builder
	for i := range n {
		if shared != nil && shared(i) {
			fmt.Fprintf(&sb, "shared %d\n", i)
		} else {
			fmt.Fprintf(&sb, "%s %d\n", prefix, i)
		}
	}
	return sb.String()
}

func TestLines_LargeRewrite_BoundedMemory(t *testing.T) {
	// 1. 准备两份 5 万行、没有任何公共行的文本
	const n = 50000
	oldText := numbered("old", n, nil)
	newText := numbered("new", n, nil)

	// 2. 计算差异并统计期间的总分配量
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	segs := Lines(oldText, newText)
	runtime.ReadMemStats(&after)

	allocated := after.TotalAlloc - before.TotalAlloc
	assert.Less(t, allocated, uint64(64<<20), "allocated %d bytes", allocated)

	// 3. 整体改写：先全部删除，再全部新增
	require.Len(t, segs, 2)
	assert.Equal(t, Removed, segs[0].Op)
	assert.Equal(t, Added, segs[1].Op)
	assert.Equal(t, Stats{Additions: n, Deletions: n}, Count(segs))
	assert.Equal(t, oldText, OldText(segs))
	assert.Equal(t, newText, NewText(segs))
}

func TestLines_InterleavedRewrite(t *testing.T) {
	// 每 3 行保留一行公共行，其余全部改写
	const n = 3000
	shared := func(i int) bool { return i%3 == 0 }
	oldText := numbered("old", n, shared)
	newText := numbered("new", n, shared)

	segs := Lines(oldText, newText)
	assert.Equal(t, oldText, OldText(segs))
	assert.Equal(t, newText, NewText(segs))
	assert.Equal(t, Stats{Additions: 2 * n / 3, Deletions: 2 * n / 3}, Count(segs))
}

func TestCount(t *testing.T) {
	segs := []Segment{
		{Op: Unchanged, Text: "a\n", Lines: 1},
		{Op: Removed, Text: "b\nc\n", Lines: 2},
		{Op: Added, Text: "d\n", Lines: 1},
	}
	assert.Equal(t, Stats{Additions: 1, Deletions: 2}, Count(segs))
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "unchanged", Unchanged.String())
	assert.Equal(t, "added", Added.String())
	assert.Equal(t, "removed", Removed.String())
}
