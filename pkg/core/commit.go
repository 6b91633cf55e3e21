package core

import (
	"errors"
	"fmt"
	"time"

	"groot/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// ErrMalformedCommit 表示对象库里的字节无法还原成一个合法的 Commit
var ErrMalformedCommit = errors.New("malformed commit record")

// DateLayout 是 Commit 中 date 字段的 ISO-8601 格式
const DateLayout = time.RFC3339Nano

// FileEntry 是 Commit 中的一条文件记录
type FileEntry struct {
	Path string `cbor:"path"`
	Hash Link   `cbor:"hash"`
}

// NewFileEntry 辅助函数
func NewFileEntry(path string, hash types.Hash) FileEntry {
	return FileEntry{Path: path, Hash: NewLink(hash)}
}

// Commit 是一个不可变的快照记录
// Parent 为 nil 表示根提交 (序列化为 CBOR null)
type Commit struct {
	hash     types.Hash `cbor:"-"`
	rawBytes []byte     `cbor:"-"`

	TypeVal ObjectType  `cbor:"t"`
	Date    string      `cbor:"date"`
	Parent  *Link       `cbor:"parent"`
	Message string      `cbor:"message"`
	Files   []FileEntry `cbor:"files"`
}

// NewCommitAt 以指定时间创建 Commit
// parent 为空表示根提交，时间统一转成 UTC
func NewCommitAt(parent types.Hash, msg string, files []FileEntry, at time.Time) (*Commit, error) {
	// files 为 nil 时也要编码成空数组，保证 "files" 字段始终存在
	if files == nil {
		files = []FileEntry{}
	}

	c := &Commit{
		TypeVal: TypeCommit,
		Date:    at.UTC().Format(DateLayout),
		Message: msg,
		Files:   files,
	}
	if !parent.IsZero() {
		link := NewLink(parent)
		c.Parent = &link
	}

	// Hash 覆盖了 parent，所以提交哈希是依赖于整条链的
	h, b, err := CalculateHash(c)
	if err != nil {
		return nil, err
	}
	c.hash = h
	c.rawBytes = b
	return c, nil
}

// 必须出现的字段，缺一个都视为损坏
var requiredCommitFields = []string{"t", "date", "parent", "message", "files"}

// DecodeCommit 从对象库读出的字节还原 Commit
// 任何形状不对的数据都返回 ErrMalformedCommit，而不是留到字段访问时才出错
func DecodeCommit(data []byte) (*Commit, error) {
	// 1. 先检查必填字段是否齐全
	var fields map[string]cbor.RawMessage
	if err := pm.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommit, err)
	}
	for _, name := range requiredCommitFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedCommit, name)
		}
	}

	// 2. 严格解码
	var c Commit
	if err := DecodeObject(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCommit, err)
	}

	// 3. 语义校验
	if err := c.validate(); err != nil {
		return nil, err
	}

	c.hash = CalculateBlobHash(data)
	c.rawBytes = data
	return &c, nil
}

func (c *Commit) validate() error {
	if c.TypeVal != TypeCommit {
		return fmt.Errorf("%w: object type is %q", ErrMalformedCommit, c.TypeVal)
	}
	if _, err := time.Parse(DateLayout, c.Date); err != nil {
		return fmt.Errorf("%w: bad date %q", ErrMalformedCommit, c.Date)
	}
	for i, f := range c.Files {
		if f.Path == "" {
			return fmt.Errorf("%w: file #%d has empty path", ErrMalformedCommit, i)
		}
	}
	return nil
}

func (c *Commit) Type() ObjectType { return TypeCommit }
func (c *Commit) ID() types.Hash   { return c.hash }
func (c *Commit) Bytes() []byte    { return c.rawBytes }

// ParentHash 返回父提交的 Hash，根提交返回空
func (c *Commit) ParentHash() types.Hash {
	if c.Parent == nil {
		return ""
	}
	return c.Parent.Hash
}

// IsRoot 判断是否是根提交
func (c *Commit) IsRoot() bool { return c.Parent == nil }

// Time 解析 date 字段
func (c *Commit) Time() time.Time {
	t, _ := time.Parse(DateLayout, c.Date)
	return t
}

// FindFile 在文件列表中线性查找第一个匹配的路径
func (c *Commit) FindFile(path string) (FileEntry, bool) {
	for _, f := range c.Files {
		if f.Path == path {
			return f, true
		}
	}
	return FileEntry{}, false
}
