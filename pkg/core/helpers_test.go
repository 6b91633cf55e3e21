package core

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"groot/pkg/types"

	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// 辅助工具
// -----------------------------------------------------------------------------

// mockHash 生成一个合法的 32 字节 Hex 字符串 (64字符长度)
// 用于满足 Link 对 Hex 格式的要求
func mockHash(input string) types.Hash {
	sum := sha256.Sum256([]byte(input))
	return types.Hash(hex.EncodeToString(sum[:]))
}

// fixedTime 固定时间，让 Hash 可复现
var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// mustNewCommit 创建 Commit，如果失败直接终止测试
func mustNewCommit(t *testing.T, parent types.Hash, msg string, files []FileEntry, msgAndArgs ...any) *Commit {
	t.Helper()
	c, err := NewCommitAt(parent, msg, files, fixedTime)
	require.NoError(t, err, msgAndArgs...) // 透传消息
	return c
}
