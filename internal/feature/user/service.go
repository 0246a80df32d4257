package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"seasonal-cms/internal/domain"
	"seasonal-cms/pkg/utils"
)

const (
	resetTokenTTL  = 1 * time.Hour
	emailChangeTTL = 24 * time.Hour
)

type Service struct {
	users  domain.UserRepository
	resets domain.ResetTokenRepository
	emails domain.EmailChangeRepository
	log    *zap.Logger
}

func NewService(users domain.UserRepository, resets domain.ResetTokenRepository, emails domain.EmailChangeRepository, log *zap.Logger) *Service {
	return &Service{users: users, resets: resets, emails: emails, log: log}
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Register 自助注册，永远不是主账号
func (s *Service) Register(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{ID: utils.NewID(), Email: email, PasswordHash: passwordHash, IsMaster: false}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateAdmin 后台建号，可直接指定主账号标记
func (s *Service) CreateAdmin(ctx context.Context, email, passwordHash string, isMaster bool) (*domain.User, error) {
	u := &domain.User{ID: utils.NewID(), Email: email, PasswordHash: passwordHash, IsMaster: isMaster}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateInput 部分更新：nil 字段不动
type UpdateInput struct {
	Email        *string
	PasswordHash *string
	IsMaster     *bool
}

// UpdateAdmin 只改传入的字段；全空时不发写请求，原样返回当前记录
func (s *Service) UpdateAdmin(ctx context.Context, id string, in UpdateInput) (*domain.User, error) {
	fields := map[string]any{}
	if in.Email != nil {
		fields["email"] = *in.Email
	}
	if in.PasswordHash != nil {
		fields["password_hash"] = *in.PasswordHash
	}
	if in.IsMaster != nil {
		fields["is_master"] = *in.IsMaster
	}
	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *Service) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.users.UpdateFields(ctx, id, map[string]any{"password_hash": passwordHash})
}

func (s *Service) SetMasterFlag(ctx context.Context, id string, isMaster bool) error {
	return s.users.UpdateFields(ctx, id, map[string]any{"is_master": isMaster})
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

// CountMasters "至少保留一个主账号"由调用方把关，这里只给计数
func (s *Service) CountMasters(ctx context.Context) (int64, error) {
	return s.users.CountMasters(ctx)
}

// IssueResetToken 先清掉该用户的旧令牌再签发新的（同一时间最多一个有效令牌）
func (s *Service) IssueResetToken(ctx context.Context, userID string) (*domain.PasswordResetToken, error) {
	if err := s.resets.ClearForUser(ctx, userID); err != nil {
		return nil, err
	}
	t := &domain.PasswordResetToken{
		ID:        utils.NewID(),
		UserID:    userID,
		Token:     utils.NewToken(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.resets.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ResetPassword 校验令牌、换密码、消费令牌。令牌不存在返回 nil, nil 交上层处理
func (s *Service) ResetPassword(ctx context.Context, token, passwordHash string) (*domain.User, error) {
	t, err := s.resets.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	if time.Now().After(t.ExpiresAt) {
		// 顺手清理过期令牌
		_ = s.resets.DeleteByID(ctx, t.ID)
		return nil, domain.ErrTokenExpired
	}
	if err := s.users.UpdateFields(ctx, t.UserID, map[string]any{"password_hash": passwordHash}); err != nil {
		return nil, err
	}
	// 密码已落库，清令牌失败只记日志，不把成功的重置报成失败
	if err := s.resets.DeleteByID(ctx, t.ID); err != nil {
		s.log.Warn("password reset applied but token cleanup failed", zap.String("id", t.ID), zap.Error(err))
	}
	return s.users.FindByID(ctx, t.UserID)
}

// RequestEmailChange 登记待生效的新邮箱，确认前 User.Email 不变
func (s *Service) RequestEmailChange(ctx context.Context, userID, newEmail string) (*domain.EmailChangeRequest, error) {
	req := &domain.EmailChangeRequest{
		ID:        utils.NewID(),
		UserID:    userID,
		NewEmail:  newEmail,
		Token:     utils.NewToken(),
		ExpiresAt: time.Now().Add(emailChangeTTL),
	}
	if err := s.emails.Insert(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ConfirmEmailChange 应用 newEmail 并删除请求。令牌不存在返回 nil, nil
func (s *Service) ConfirmEmailChange(ctx context.Context, token string) (*domain.User, error) {
	req, err := s.emails.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, nil
	}
	if time.Now().After(req.ExpiresAt) {
		_ = s.emails.DeleteByID(ctx, req.ID)
		return nil, domain.ErrTokenExpired
	}
	if err := s.users.UpdateFields(ctx, req.UserID, map[string]any{"email": req.NewEmail}); err != nil {
		return nil, err
	}
	if err := s.emails.DeleteByID(ctx, req.ID); err != nil {
		s.log.Warn("email change applied but request cleanup failed", zap.String("id", req.ID), zap.Error(err))
	}
	return s.users.FindByID(ctx, req.UserID)
}
