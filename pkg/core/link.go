package core

import (
	"fmt"

	"groot/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// Link 代表一条指向其他对象的哈希引用
// 在 Go 层面，它只是一个包装了 Hash 的结构体
// 在 CBOR 层面，它会被序列化为 Tag 42(0x00 + HashBytes)
type Link struct {
	Hash types.Hash
}

const (
	linkTagNumber = 42
	// sha256 摘要长度
	linkDigestLen = 32
)

// NewLink 辅助函数
func NewLink(hash types.Hash) Link {
	return Link{Hash: hash}
}

// MarshalCBOR 实现自定义序列化逻辑
// 规范：Tag 42, Content = [0x00, byte1, byte2...]
func (l Link) MarshalCBOR() ([]byte, error) {
	// 1. 解码 Hex 字符串
	hashBytes, err := l.Hash.Bytes()
	if err != nil {
		return nil, fmt.Errorf("invalid hash format in link: %w", err)
	}
	if len(hashBytes) != linkDigestLen {
		return nil, fmt.Errorf("invalid hash length in link: %d", len(hashBytes))
	}

	// 2. 添加 Multibase Identity 前缀 (0x00)
	cidBytes := append([]byte{0x00}, hashBytes...)

	// 3. 包装为 Tag 42
	return em.Marshal(cbor.Tag{
		Number:  linkTagNumber,
		Content: cidBytes,
	})
}

// UnmarshalCBOR 实现自定义反序列化逻辑
func (l *Link) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := dm.Unmarshal(data, &tag); err != nil {
		return err
	}

	// 1. 校验 Tag Number
	if tag.Number != linkTagNumber {
		return fmt.Errorf("expected tag 42 for Link, got %d", tag.Number)
	}

	// 2. 获取内容字节
	bytes, ok := tag.Content.([]byte)
	if !ok {
		return fmt.Errorf("link content must be byte string")
	}

	// 3. 严格校验 Multibase 前缀和长度
	if len(bytes) < 1 {
		return fmt.Errorf("invalid link: empty content")
	}
	if bytes[0] != 0x00 {
		return fmt.Errorf("invalid link: missing 0x00 multibase prefix")
	}
	if len(bytes)-1 != linkDigestLen {
		return fmt.Errorf("invalid link: digest is %d bytes", len(bytes)-1)
	}

	// 4. 还原 Hash (去掉前缀)
	l.Hash = types.Hash(fmt.Sprintf("%x", bytes[1:]))
	return nil
}
