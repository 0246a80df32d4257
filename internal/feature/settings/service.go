package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"seasonal-cms/internal/domain"
)

// Service 在启动时拿到当前后端对应的 SettingsStore（表存储或内容投影），
// 进程存活期内不再切换。
type Service struct {
	store domain.SettingsStore
}

func NewService(store domain.SettingsStore) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]domain.Setting, error) {
	return s.store.List(ctx)
}

// Upsert value 必须是 JSON 编码后的字符串（标量也要编码，如 "\"Acme\""）
func (s *Service) Upsert(ctx context.Context, key, value string) (*domain.Setting, error) {
	if !json.Valid([]byte(value)) {
		return nil, fmt.Errorf("setting %s: value is not valid json", key)
	}
	return s.store.Upsert(ctx, key, value)
}
