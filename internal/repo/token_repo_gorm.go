package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"seasonal-cms/internal/domain"
)

type ResetTokenRepo struct{ db *gorm.DB }

func NewResetTokenRepo(db *gorm.DB) *ResetTokenRepo { return &ResetTokenRepo{db: db} }

func (r *ResetTokenRepo) ClearForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.PasswordResetToken{}).Error
}

func (r *ResetTokenRepo) Insert(ctx context.Context, t *domain.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *ResetTokenRepo) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	var t domain.PasswordResetToken
	err := r.db.WithContext(ctx).First(&t, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ResetTokenRepo) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.PasswordResetToken{}).Error
}

type EmailChangeRepo struct{ db *gorm.DB }

func NewEmailChangeRepo(db *gorm.DB) *EmailChangeRepo { return &EmailChangeRepo{db: db} }

func (r *EmailChangeRepo) Insert(ctx context.Context, req *domain.EmailChangeRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *EmailChangeRepo) FindByToken(ctx context.Context, token string) (*domain.EmailChangeRequest, error) {
	var req domain.EmailChangeRequest
	err := r.db.WithContext(ctx).First(&req, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *EmailChangeRepo) DeleteByID(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.EmailChangeRequest{}).Error
}
