package domain

import (
	"context"
	"time"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	IsMaster     bool      `gorm:"not null;default:false" json:"isMaster"` // 主账号（后台完全权限）
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (User) TableName() string { return "users" }

// Role JWT claims 里的角色名
func (u *User) Role() string {
	if u.IsMaster {
		return "admin"
	}
	return "user"
}

type PasswordResetToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"userId"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

type EmailChangeRequest struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"userId"`
	NewEmail  string    `gorm:"size:191;not null" json:"newEmail"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (EmailChangeRequest) TableName() string { return "email_change_requests" }

type UserRepository interface {
	// FindByEmail / FindByID 未命中返回 nil, nil
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	// Insert 邮箱冲突返回 ErrEmailTaken
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	// UpdateFields 部分更新，fields 为空时不发 SQL
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// List 按 id 升序
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
	CountMasters(ctx context.Context) (int64, error)
}

type ResetTokenRepository interface {
	ClearForUser(ctx context.Context, userID string) error
	Insert(ctx context.Context, t *PasswordResetToken) error
	FindByToken(ctx context.Context, token string) (*PasswordResetToken, error)
	DeleteByID(ctx context.Context, id string) error
}

type EmailChangeRepository interface {
	Insert(ctx context.Context, r *EmailChangeRequest) error
	FindByToken(ctx context.Context, token string) (*EmailChangeRequest, error)
	DeleteByID(ctx context.Context, id string) error
}
