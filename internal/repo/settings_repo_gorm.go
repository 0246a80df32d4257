package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"seasonal-cms/internal/domain"
)

// SettingsRepo 托管后端的设置存储：独立 settings 表 + 原生 keyed upsert
type SettingsRepo struct{ db *gorm.DB }

func NewSettingsRepo(db *gorm.DB) *SettingsRepo { return &SettingsRepo{db: db} }

func (r *SettingsRepo) List(ctx context.Context) ([]domain.Setting, error) {
	var rows []domain.Setting
	err := r.db.WithContext(ctx).Order("key asc").Find(&rows).Error
	return rows, err
}

func (r *SettingsRepo) Upsert(ctx context.Context, key, value string) (*domain.Setting, error) {
	s := domain.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}
