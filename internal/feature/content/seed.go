package content

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"seasonal-cms/internal/domain"
	"seasonal-cms/pkg/utils"
)

// Seed 调用方提供的整站内容结构，一个顶层字段对应一条内容行
type Seed struct {
	Testimonials    json.RawMessage `json:"testimonials"`
	HeroSummer      json.RawMessage `json:"hero.summer"`
	HeroWinter      json.RawMessage `json:"hero.winter"`
	ServicesSummer  json.RawMessage `json:"services.summer"`
	ServicesWinter  json.RawMessage `json:"services.winter"`
	PortfolioSummer json.RawMessage `json:"portfolio.summer"`
	PortfolioWinter json.RawMessage `json:"portfolio.winter"`
	Contact         json.RawMessage `json:"contact"`
}

// sections 固定的 key 顺序
func (s Seed) sections() []struct {
	key string
	raw json.RawMessage
} {
	return []struct {
		key string
		raw json.RawMessage
	}{
		{"testimonials", s.Testimonials},
		{"hero.summer", s.HeroSummer},
		{"hero.winter", s.HeroWinter},
		{"services.summer", s.ServicesSummer},
		{"services.winter", s.ServicesWinter},
		{"portfolio.summer", s.PortfolioSummer},
		{"portfolio.winter", s.PortfolioWinter},
		{"contact", s.Contact},
	}
}

// ResetWithSeed 破坏性全量重建：单事务内删光旧行、写入种子的八个区块，
// 并发读者看不到"内容为空"的中间态。每行 type=json，value 为对应字段的
// JSON 序列化（原样载荷，做一次 compact 规整）。
func (s *Service) ResetWithSeed(ctx context.Context, seed Seed) error {
	rows := make([]domain.Content, 0, 8)
	for _, sec := range seed.sections() {
		raw := sec.raw
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		val, err := json.Marshal(raw) // RawMessage 原样输出，同时校验是合法 JSON
		if err != nil {
			return err
		}
		rows = append(rows, domain.Content{
			ID:    utils.NewID(),
			Key:   sec.key,
			Value: string(val),
			Type:  "json",
		})
	}
	if err := s.repo.ReplaceAll(ctx, rows); err != nil {
		return err
	}
	s.log.Info("content reset from seed", zap.Int("sections", len(rows)))
	return nil
}
