package domain

import "context"

// Setting 站点配置项。托管后端有独立 settings 表；
// 嵌入式后端没有，由内容行投影而来（见 settings.ContentFallback）。
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"type:text" json:"value"` // 统一存字符串（标量也是 JSON 编码后的）
}

func (Setting) TableName() string { return "settings" }

// 两个后端各自支持的设置 key；嵌入式后端只认这两个
const (
	SettingSiteName  = "SITE_NAME"
	SettingUserEmail = "USER_EMAIL"
)

// SettingsStore 两个后端各有一个实现，能力差异是有意保留的：
// 嵌入式实现对不支持的 key 返回 ErrUnsupportedSettingKey。
type SettingsStore interface {
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, key, value string) (*Setting, error)
}
