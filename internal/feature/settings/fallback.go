package settings

import (
	"context"
	"encoding/json"

	"seasonal-cms/internal/domain"
	"seasonal-cms/internal/feature/content"
)

// 嵌入式后端没有 settings 表，把两项设置投影到既有内容行上：
// SITE_NAME -> branding.name，USER_EMAIL -> contact.email
const (
	brandingKey = "branding"
	contactKey  = "contact"
)

// ContentFallback 嵌入式后端的 SettingsStore 实现。
// 能力是刻意收窄的：除上面两个 key 之外一律 ErrUnsupportedSettingKey。
type ContentFallback struct {
	content *content.Service
}

func NewContentFallback(c *content.Service) *ContentFallback {
	return &ContentFallback{content: c}
}

func (f *ContentFallback) List(ctx context.Context) ([]domain.Setting, error) {
	out := make([]domain.Setting, 0, 2)
	if v, ok, err := f.readField(ctx, brandingKey, "name"); err != nil {
		return nil, err
	} else if ok {
		out = append(out, domain.Setting{Key: domain.SettingSiteName, Value: v})
	}
	if v, ok, err := f.readField(ctx, contactKey, "email"); err != nil {
		return nil, err
	} else if ok {
		out = append(out, domain.Setting{Key: domain.SettingUserEmail, Value: v})
	}
	return out, nil
}

func (f *ContentFallback) Upsert(ctx context.Context, key, value string) (*domain.Setting, error) {
	var contentKey, field string
	switch key {
	case domain.SettingSiteName:
		contentKey, field = brandingKey, "name"
	case domain.SettingUserEmail:
		contentKey, field = contactKey, "email"
	default:
		return nil, domain.ErrUnsupportedSettingKey
	}

	var v any
	if err := json.Unmarshal([]byte(value), &v); err != nil {
		return nil, err
	}

	// 读-改-写：保留内容行里的其它字段，只动目标字段
	obj := map[string]any{}
	existing, err := f.content.GetByKey(ctx, contentKey)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Value != "" {
		if err := json.Unmarshal([]byte(existing.Value), &obj); err != nil {
			// 旧值不是 JSON 对象就整体重建
			obj = map[string]any{}
		}
	}
	obj[field] = v

	payload, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	if _, err := f.content.Upsert(ctx, "", contentKey, string(payload), "json"); err != nil {
		return nil, err
	}
	return &domain.Setting{Key: key, Value: value}, nil
}

// readField 取内容行 JSON 载荷的单个字段，值重新编码成 JSON 字符串。
// 行不存在、载荷不可解析、字段缺失都只表现为"该设置不存在"。
func (f *ContentFallback) readField(ctx context.Context, contentKey, field string) (string, bool, error) {
	c, err := f.content.GetByKey(ctx, contentKey)
	if err != nil {
		return "", false, err
	}
	if c == nil {
		return "", false, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(c.Value), &obj); err != nil {
		return "", false, nil
	}
	v, ok := obj[field]
	if !ok {
		return "", false, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false, nil
	}
	return string(b), true, nil
}
