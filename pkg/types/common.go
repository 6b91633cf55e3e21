// pkg/types/common.go
package types

import "encoding/hex"

// HashLen 是 SHA-256 Hex 字符串的长度
const HashLen = 64

// Hash 代表对象的唯一标识符 (SHA256 Hex String)
// 这是一个“值对象”，应当是不可变的。
type Hash string

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool { return h == "" }

// IsValid 要求 64 个小写十六进制字符
func (h Hash) IsValid() bool {
	if len(h) != HashLen {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Short 返回用于展示的短哈希 (前 8 位)
func (h Hash) Short() string {
	if len(h) <= 8 {
		return string(h)
	}
	return string(h[:8])
}

// Bytes 把 Hex 还原成原始字节
func (h Hash) Bytes() ([]byte, error) {
	return hex.DecodeString(string(h))
}

// HashPrefix 是用户输入的短哈希
type HashPrefix string

func (p HashPrefix) String() string { return string(p) }

// MinPrefixLen 短哈希的最小长度，太短的前缀几乎必然歧义
const MinPrefixLen = 4
