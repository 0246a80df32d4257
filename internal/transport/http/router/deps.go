package router

import (
	"context"
	"time"

	"seasonal-cms/internal/core/auth"
	"seasonal-cms/internal/core/cache"
	"seasonal-cms/internal/core/mail"
	"seasonal-cms/internal/feature/content"
	"seasonal-cms/internal/feature/settings"
	"seasonal-cms/internal/feature/user"
)

// Deps 两个引擎共享的依赖；启动时装配一次，路由层不碰存储
type Deps struct {
	JWT      *auth.JWTer
	Content  *content.Service
	Users    *user.Service
	Settings *settings.Service
	Mail     mail.Sender

	Cache      *cache.Cache // nil = 不启用内容缓存
	ContentTTL time.Duration

	PublicBaseURL string // 邮件里的链接前缀
}

const contentCacheKey = "content:all"

func (d *Deps) invalidateContentCache(ctx context.Context) {
	if d.Cache != nil {
		d.Cache.Invalidate(ctx, contentCacheKey)
	}
}
