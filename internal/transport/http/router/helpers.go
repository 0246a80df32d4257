package router

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"

	"seasonal-cms/internal/core/cache"
	"seasonal-cms/internal/core/mail"
	"seasonal-cms/internal/domain"
)

func cacheListContent(c *gin.Context, d *Deps) ([]domain.Content, error) {
	out, err := cache.GetOrLoadJSON[[]domain.Content](d.Cache, c.Request.Context(), contentCacheKey, d.ContentTTL,
		func(ctx context.Context) (*[]domain.Content, error) {
			rows, err := d.Content.List(ctx)
			if err != nil {
				return nil, err
			}
			return &rows, nil
		})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Content{}, nil
	}
	return *out, nil
}

func mailMessage(to, subject, body string) mail.Message {
	return mail.Message{To: to, Subject: subject, Body: body}
}

// decodeJSONString 设置值是 JSON 编码的标量；不是合法 JSON 字符串就原样返回
func decodeJSONString(v string) string {
	var s string
	if err := json.Unmarshal([]byte(v), &s); err == nil {
		return s
	}
	return v
}
