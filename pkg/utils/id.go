package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 生成 32 位十六进制 id（uuid 去横线）
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewToken 生成一次性令牌（重置密码/换邮箱）
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
