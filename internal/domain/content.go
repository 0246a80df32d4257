package domain

import (
	"context"
	"time"
)

// Content 站点内容块，按逻辑 key 寻址（如 "hero.summer"、"services.winter"）。
// Value 是不透明字符串载荷（约定为 JSON 或纯文本），本层不解析。
type Content struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:191;not null" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Type      string    `gorm:"size:16;default:text" json:"type"` // "text"/"json"/"html"，仅提示用途，不校验
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Content) TableName() string { return "contents" }

type ContentRepository interface {
	List(ctx context.Context) ([]Content, error)
	// FindByID / FindByKey 未命中返回 nil, nil
	FindByID(ctx context.Context, id string) (*Content, error)
	FindByKey(ctx context.Context, key string) (*Content, error)
	Insert(ctx context.Context, c *Content) error
	// Update 目标不存在时返回 ErrNotFound
	Update(ctx context.Context, c *Content) error
	// DeleteByID 幂等：目标不存在也算成功
	DeleteByID(ctx context.Context, id string) error
	// ReplaceAll 单事务内清空并重建全部内容行
	ReplaceAll(ctx context.Context, rows []Content) error
}
