// Package diff 计算两段文本之间基于行的差异。
//
// 结果是一串带标记的片段 (Segment)。按顺序拼接 Unchanged+Removed 得到旧文本，
// 拼接 Unchanged+Added 得到新文本，片段边界总是落在行边界上。
package diff

import "strings"

// Op 标记一个片段属于哪一边
type Op int

const (
	Unchanged Op = iota
	Added        // 只存在于新版本
	Removed      // 只存在于旧版本
)

func (o Op) String() string {
	switch o {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// Segment 是若干连续的、同一标记的行
type Segment struct {
	Op    Op
	Text  string
	Lines int
}

// SplitLines 按行切分，保留每行末尾的 '\n'
// 最后一行没有换行符时原样保留
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Lines 计算 oldText -> newText 的行级差异 (LCS)
// 同一个变更块内，Removed 片段总是排在 Added 片段之前
func Lines(oldText, newText string) []Segment {
	a := SplitLines(oldText)
	b := SplitLines(newText)

	// 1. 剥掉公共前缀和后缀，LCS 只需要处理中间部分
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	var ops []lineOp
	for _, l := range a[:prefix] {
		ops = append(ops, lineOp{Unchanged, l})
	}
	ops = append(ops, lcsOps(a[prefix:len(a)-suffix], b[prefix:len(b)-suffix])...)
	for _, l := range a[len(a)-suffix:] {
		ops = append(ops, lineOp{Unchanged, l})
	}

	return merge(reorder(ops))
}

type lineOp struct {
	op   Op
	line string
}

// lcsOps 求 a -> b 的最短编辑脚本 (Myers O(ND)，中间蛇分治)
// 内存只与行数线性相关，大文件整体改写也不会构造 n*m 的表
func lcsOps(a, b []string) []lineOp {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	// 1. 行内容换成整数 ID，比较只看 ID
	ids := make(map[string]int, len(a)+len(b))
	intern := func(lines []string) []int {
		out := make([]int, len(lines))
		for i, l := range lines {
			id, ok := ids[l]
			if !ok {
				id = len(ids)
				ids[l] = id
			}
			out[i] = id
		}
		return out
	}
	ia, ib := intern(a), intern(b)

	// 2. 只在一边出现的行不可能匹配，直接记为变更，不参与搜索
	inA := make([]bool, len(ids))
	inB := make([]bool, len(ids))
	for _, id := range ia {
		inA[id] = true
	}
	for _, id := range ib {
		inB[id] = true
	}
	changedA := make([]bool, len(a))
	changedB := make([]bool, len(b))
	var keptA, keptB []int
	for i, id := range ia {
		if inB[id] {
			keptA = append(keptA, i)
		} else {
			changedA[i] = true
		}
	}
	for j, id := range ib {
		if inA[id] {
			keptB = append(keptB, j)
		} else {
			changedB[j] = true
		}
	}

	// 3. 在剩下的行上跑 Myers
	m := &myers{
		a:    pick(ia, keptA),
		b:    pick(ib, keptB),
		rmA:  make([]bool, len(keptA)),
		addB: make([]bool, len(keptB)),
	}
	m.compare(0, len(m.a), 0, len(m.b))
	for p, i := range keptA {
		changedA[i] = m.rmA[p]
	}
	for p, j := range keptB {
		changedB[j] = m.addB[p]
	}

	// 4. 按标记回放；两边未变更的行一一对应且内容相同
	ops := make([]lineOp, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && changedA[i]:
			ops = append(ops, lineOp{Removed, a[i]})
			i++
		case j < len(b) && changedB[j]:
			ops = append(ops, lineOp{Added, b[j]})
			j++
		default:
			ops = append(ops, lineOp{Unchanged, a[i]})
			i++
			j++
		}
	}
	return ops
}

func pick(ids, idx []int) []int {
	out := make([]int, len(idx))
	for p, i := range idx {
		out[p] = ids[i]
	}
	return out
}

// myers 在 a/b 上标记被删除 (rmA) 和被新增 (addB) 的位置
type myers struct {
	a, b      []int
	rmA, addB []bool
}

func (m *myers) compare(aLo, aHi, bLo, bHi int) {
	for aLo < aHi && bLo < bHi && m.a[aLo] == m.b[bLo] {
		aLo++
		bLo++
	}
	for aLo < aHi && bLo < bHi && m.a[aHi-1] == m.b[bHi-1] {
		aHi--
		bHi--
	}

	switch {
	case aLo == aHi:
		for j := bLo; j < bHi; j++ {
			m.addB[j] = true
		}
	case bLo == bHi:
		for i := aLo; i < aHi; i++ {
			m.rmA[i] = true
		}
	default:
		x, y, ok := bisect(m.a[aLo:aHi], m.b[bLo:bHi])
		if !ok {
			for i := aLo; i < aHi; i++ {
				m.rmA[i] = true
			}
			for j := bLo; j < bHi; j++ {
				m.addB[j] = true
			}
			return
		}
		m.compare(aLo, aLo+x, bLo, bLo+y)
		m.compare(aLo+x, aHi, bLo+y, bHi)
	}
}

// bisect 从两端同时推进 D 路径，返回前后向路径首次重叠处的切分点
// ok=false 表示两段没有任何公共行
func bisect(a, b []int) (x, y int, ok bool) {
	n, m := len(a), len(b)
	maxD := (n + m + 1) / 2
	off := maxD
	size := 2*maxD + 2
	vf := make([]int, size)
	vb := make([]int, size)
	for k := range size {
		vf[k] = -1
		vb[k] = -1
	}
	vf[off+1] = 0
	vb[off+1] = 0

	delta := n - m
	front := delta%2 != 0
	// 越出网格的对角线不再推进
	fStart, fEnd, bStart, bEnd := 0, 0, 0, 0

	for d := range maxD {
		for k := -d + fStart; k <= d-fEnd; k += 2 {
			ko := off + k
			var x1 int
			if k == -d || (k != d && vf[ko-1] < vf[ko+1]) {
				x1 = vf[ko+1]
			} else {
				x1 = vf[ko-1] + 1
			}
			y1 := x1 - k
			for x1 < n && y1 < m && a[x1] == b[y1] {
				x1++
				y1++
			}
			vf[ko] = x1
			switch {
			case x1 > n:
				fEnd += 2
			case y1 > m:
				fStart += 2
			case front:
				bo := off + delta - k
				if bo >= 0 && bo < size && vb[bo] != -1 && x1 >= n-vb[bo] {
					return x1, y1, true
				}
			}
		}

		for k := -d + bStart; k <= d-bEnd; k += 2 {
			ko := off + k
			var x2 int
			if k == -d || (k != d && vb[ko-1] < vb[ko+1]) {
				x2 = vb[ko+1]
			} else {
				x2 = vb[ko-1] + 1
			}
			y2 := x2 - k
			for x2 < n && y2 < m && a[n-x2-1] == b[m-y2-1] {
				x2++
				y2++
			}
			vb[ko] = x2
			switch {
			case x2 > n:
				bEnd += 2
			case y2 > m:
				bStart += 2
			case !front:
				fo := off + delta - k
				if fo >= 0 && fo < size && vf[fo] != -1 {
					x1 := vf[fo]
					y1 := off + x1 - fo
					if x1 >= n-x2 {
						return x1, y1, true
					}
				}
			}
		}
	}
	return 0, 0, false
}

// reorder 在每个连续的变更块内，把 Removed 行移到 Added 行前面
// 两边各自的相对顺序不变，所以重建结果不受影响
func reorder(ops []lineOp) []lineOp {
	out := make([]lineOp, 0, len(ops))
	var removed, added []lineOp
	flush := func() {
		out = append(out, removed...)
		out = append(out, added...)
		removed, added = removed[:0], added[:0]
	}
	for _, o := range ops {
		switch o.op {
		case Removed:
			removed = append(removed, o)
		case Added:
			added = append(added, o)
		default:
			flush()
			out = append(out, o)
		}
	}
	flush()
	return out
}

// merge 把同一标记的相邻行合并成片段
func merge(ops []lineOp) []Segment {
	var segs []Segment
	var sb strings.Builder
	count := 0
	for idx, o := range ops {
		sb.WriteString(o.line)
		count++
		if idx == len(ops)-1 || ops[idx+1].op != o.op {
			segs = append(segs, Segment{Op: o.op, Text: sb.String(), Lines: count})
			sb.Reset()
			count = 0
		}
	}
	return segs
}

// OldText 用 Unchanged+Removed 片段重建旧文本
func OldText(segs []Segment) string {
	return rebuild(segs, Removed)
}

// NewText 用 Unchanged+Added 片段重建新文本
func NewText(segs []Segment) string {
	return rebuild(segs, Added)
}

func rebuild(segs []Segment, side Op) string {
	var sb strings.Builder
	for _, s := range segs {
		if s.Op == Unchanged || s.Op == side {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// Stats 统计新增和删除的行数
type Stats struct {
	Additions int
	Deletions int
}

func Count(segs []Segment) Stats {
	var st Stats
	for _, s := range segs {
		switch s.Op {
		case Added:
			st.Additions += s.Lines
		case Removed:
			st.Deletions += s.Lines
		}
	}
	return st
}
