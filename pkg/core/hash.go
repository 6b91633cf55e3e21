package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"groot/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// 定义符合 DAG-CBOR 规范的编码选项
var encOptions = cbor.EncOptions{
	// 1. 强制 Map Key 排序 (Canonical)
	// 保证相同的对象生成唯一的 Hash
	Sort: cbor.SortCanonical,
	// 2. 浮点数必须使用64位表示
	ShortestFloat: cbor.ShortestFloatNone,
	// 3. 禁止自动生成时间 Tag，日期以 ISO-8601 字符串显式存储
	Time:    cbor.TimeRFC3339Nano,
	TimeTag: cbor.EncTagNone,
	// 4. 禁止不定长编码 (Indefinite Length)
	IndefLength: cbor.IndefLengthForbidden,
}

// 全局复用的编码模式
var em, _ = encOptions.EncMode()

// 严格解码：用于读取 Commit，拒绝任何形状不对的数据
var decOptions = cbor.DecOptions{
	// --- 安全性配置 (防 DoS 攻击) ---
	MaxArrayElements: 100000,
	MaxMapPairs:      10000,
	MaxNestedLevels:  16,

	// --- 规范性配置 ---
	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
	BignumTag:   cbor.BignumTagForbidden,
	TimeTag:     cbor.DecTagIgnored,

	// 未知字段直接报错，而不是悄悄丢弃
	ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
}

var dm, _ = decOptions.DecMode()

// 宽松解码：只用于读取类型头，不关心其余字段
var lenientOptions = cbor.DecOptions{
	MaxArrayElements: 100000,
	MaxMapPairs:      10000,
	MaxNestedLevels:  16,
	IndefLength:      cbor.IndefLengthForbidden,
}

var pm, _ = lenientOptions.DecMode()

// CalculateHash 计算对象的 Hash 和序列化数据
func CalculateHash(v any) (types.Hash, []byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal object: %w", err)
	}
	return CalculateBlobHash(data), data, nil
}

// CalculateBlobHash 计算原始数据的 Hash
func CalculateBlobHash(data []byte) types.Hash {
	hashBytes := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(hashBytes[:]))
}

// DecodeObject 通用的严格解码函数
func DecodeObject(data []byte, v any) error {
	return dm.Unmarshal(data, v)
}

// DetectType 探测一段字节的对象类型
// 解不出 CBOR 头或者类型不认识的，一律视为 Blob
func DetectType(data []byte) ObjectType {
	var header struct {
		TypeVal ObjectType `cbor:"t"`
	}
	if err := pm.Unmarshal(data, &header); err != nil {
		return TypeBlob
	}
	if header.TypeVal == TypeCommit {
		return TypeCommit
	}
	return TypeBlob
}
