package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"seasonal-cms/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Insert(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if isDupKey(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Save(u).Error
	if isDupKey(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *UserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if isDupKey(res.Error) {
		return domain.ErrEmailTaken
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error
	return users, err
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error
}

func (r *UserRepo) CountMasters(ctx context.Context) (int64, error) {
	var n int64
	// sqlite 存 0/1、postgres 存布尔，条件都能匹配；领域层始终拿到 Go bool
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("is_master = ?", true).Count(&n).Error
	return n, err
}
