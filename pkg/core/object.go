package core

import "groot/pkg/types"

// ObjectType 定义了对象库中的对象类型
// Blob 和 Commit 共用同一个命名空间，只有读取方知道该如何解释字节
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"   // 文件内容 (原始字节)
	TypeCommit ObjectType = "commit" // 版本快照
)

// Object 是所有可寻址对象的通用接口
type Object interface {
	// Type 返回对象类型
	Type() ObjectType

	// ID 返回对象的哈希值
	ID() types.Hash

	// Bytes 返回对象的序列化数据 (用于存储)
	Bytes() []byte
}
