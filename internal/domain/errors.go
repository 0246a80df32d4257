package domain

import "errors"

// 领域层哨兵错误，调用方用 errors.Is 判断
var (
	// ErrNotFound 仅用于"按 id 操作但目标不存在"这类硬性失败；
	// 普通查询未命中返回 nil, nil（见各 Repository 注释）
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken 邮箱唯一约束冲突
	ErrEmailTaken = errors.New("email already taken")

	// ErrUnsupportedSettingKey 嵌入式后端的设置投影只支持部分 key
	ErrUnsupportedSettingKey = errors.New("unsupported setting key")

	// ErrStoreNotInitialized 仓储在拿到可用的 DB 句柄之前被使用
	ErrStoreNotInitialized = errors.New("store not initialized: nil db handle")

	// ErrTokenExpired 重置/换邮箱令牌已过期
	ErrTokenExpired = errors.New("token expired")
)
