package repo

import (
	"strings"

	"gorm.io/gorm"

	"seasonal-cms/internal/domain"
)

// Store 把各仓储的构造集中到一处，统一做句柄前置检查
type Store struct {
	Content     *ContentRepo
	Users       *UserRepo
	ResetTokens *ResetTokenRepo
	EmailChange *EmailChangeRepo
}

func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, domain.ErrStoreNotInitialized
	}
	return &Store{
		Content:     NewContentRepo(db),
		Users:       NewUserRepo(db),
		ResetTokens: NewResetTokenRepo(db),
		EmailChange: NewEmailChangeRepo(db),
	}, nil
}

// AutoMigrate 建表（嵌入式/托管后端各自在启动时执行一次）
func (s *Store) AutoMigrate(db *gorm.DB, withSettingsTable bool) error {
	models := []any{
		&domain.Content{},
		&domain.User{},
		&domain.PasswordResetToken{},
		&domain.EmailChangeRequest{},
	}
	if withSettingsTable {
		models = append(models, &domain.Setting{})
	}
	return db.AutoMigrate(models...)
}

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异导致识别不到
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
