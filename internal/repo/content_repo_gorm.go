package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"seasonal-cms/internal/domain"
)

type ContentRepo struct{ db *gorm.DB }

func NewContentRepo(db *gorm.DB) *ContentRepo { return &ContentRepo{db: db} }

func (r *ContentRepo) List(ctx context.Context) ([]domain.Content, error) {
	var rows []domain.Content
	err := r.db.WithContext(ctx).Find(&rows).Error
	return rows, err
}

func (r *ContentRepo) FindByID(ctx context.Context, id string) (*domain.Content, error) {
	var c domain.Content
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContentRepo) FindByKey(ctx context.Context, key string) (*domain.Content, error) {
	var c domain.Content
	err := r.db.WithContext(ctx).First(&c, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContentRepo) Insert(ctx context.Context, c *domain.Content) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ContentRepo) Update(ctx context.Context, c *domain.Content) error {
	res := r.db.WithContext(ctx).Model(&domain.Content{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{"key": c.Key, "value": c.Value, "type": c.Type})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContentRepo) DeleteByID(ctx context.Context, id string) error {
	// 幂等：删不存在的行不报错
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Content{}).Error
}

func (r *ContentRepo) ReplaceAll(ctx context.Context, rows []domain.Content) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Content{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
