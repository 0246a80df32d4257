package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seasonal-cms/internal/domain"
	httpez "seasonal-cms/internal/transport/http/ez"
	"seasonal-cms/pkg/utils"
)

type userOut struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	IsMaster  bool   `json:"isMaster"`
	CreatedAt string `json:"createdAt"`
}

func toUserOut(u *domain.User) userOut {
	return userOut{
		ID:        u.ID,
		Email:     u.Email,
		IsMaster:  u.IsMaster,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// mountAuthActions 注册/登录/找回密码/确认换邮箱（全部免登录）
func mountAuthActions(ez httpez.EZ, d *Deps) {
	type credIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	type tokenOut struct {
		Token string  `json:"token"`
		User  userOut `json:"user"`
	}

	httpez.Register[credIn, tokenOut](ez, httpez.Action[credIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *credIn) (tokenOut, error) {
			email := strings.ToLower(strings.TrimSpace(in.Email))
			u, err := d.Users.Register(c.Request.Context(), email, utils.HashPassword(in.Password))
			if errors.Is(err, domain.ErrEmailTaken) {
				return tokenOut{}, httpez.Conflict("email already registered")
			}
			if err != nil {
				return tokenOut{}, httpez.Internal("register failed", err)
			}
			tok, err := d.JWT.Issue(u.ID, u.Role())
			if err != nil {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			return tokenOut{Token: tok, User: toUserOut(u)}, nil
		},
	})

	httpez.Register[credIn, tokenOut](ez, httpez.Action[credIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *credIn) (tokenOut, error) {
			email := strings.ToLower(strings.TrimSpace(in.Email))
			u, err := d.Users.FindByEmail(c.Request.Context(), email)
			if err != nil {
				return tokenOut{}, httpez.Internal("db error", err)
			}
			if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
				return tokenOut{}, httpez.Unauthorized("invalid credentials")
			}
			tok, err := d.JWT.Issue(u.ID, u.Role())
			if err != nil {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			return tokenOut{Token: tok, User: toUserOut(u)}, nil
		},
	})

	type forgotIn struct {
		Email string `json:"email" binding:"required,email"`
	}
	httpez.Register[forgotIn, gin.H](ez, httpez.Action[forgotIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/forgot-password",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *forgotIn) (gin.H, error) {
			ctx := c.Request.Context()
			u, err := d.Users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
			if err != nil {
				return nil, httpez.Internal("db error", err)
			}
			// 查不到也返回成功，不暴露邮箱是否注册过
			if u == nil {
				return gin.H{"sent": true}, nil
			}
			t, err := d.Users.IssueResetToken(ctx, u.ID)
			if err != nil {
				return nil, httpez.Internal("issue reset token failed", err)
			}
			link := d.PublicBaseURL + "/admin/reset-password?token=" + t.Token
			body := "A password reset was requested for this account.\n\n" +
				"Reset link (valid 1 hour): " + link + "\n\n" +
				"If this wasn't you, ignore this mail."
			if err := d.Mail.Send(ctx, mailMessage(u.Email, "Password reset", body)); err != nil {
				return nil, httpez.Internal("send mail failed", err)
			}
			return gin.H{"sent": true}, nil
		},
	})

	type resetIn struct {
		Token    string `json:"token"    binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	httpez.Register[resetIn, gin.H](ez, httpez.Action[resetIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *resetIn) (gin.H, error) {
			u, err := d.Users.ResetPassword(c.Request.Context(), in.Token, utils.HashPassword(in.Password))
			if errors.Is(err, domain.ErrTokenExpired) {
				return nil, httpez.BadRequest("reset token expired")
			}
			if err != nil {
				return nil, httpez.Internal("reset password failed", err)
			}
			if u == nil {
				return nil, httpez.BadRequest("invalid reset token")
			}
			return gin.H{"ok": true}, nil
		},
	})

	type confirmIn struct {
		Token string `json:"token" binding:"required"`
	}
	httpez.Register[confirmIn, userOut](ez, httpez.Action[confirmIn, userOut]{
		Method: http.MethodPost,
		Path:   "/auth/confirm-email",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *confirmIn) (userOut, error) {
			u, err := d.Users.ConfirmEmailChange(c.Request.Context(), in.Token)
			if errors.Is(err, domain.ErrTokenExpired) {
				return userOut{}, httpez.BadRequest("confirmation token expired")
			}
			if err != nil {
				return userOut{}, httpez.Internal("confirm email failed", err)
			}
			if u == nil {
				return userOut{}, httpez.BadRequest("invalid confirmation token")
			}
			return toUserOut(u), nil
		},
	})
}

// mountAccountActions 登录后的自助操作：/me、改密码、申请换邮箱
func mountAccountActions(ez httpez.EZ, d *Deps) {
	httpez.Register[struct{}, userOut](ez, httpez.Action[struct{}, userOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (userOut, error) {
			u, err := d.Users.GetByID(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return userOut{}, httpez.Internal("db error", err)
			}
			if u == nil {
				return userOut{}, httpez.NotFound("user not found")
			}
			return toUserOut(u), nil
		},
	})

	type pwIn struct {
		Current string `json:"current" binding:"required"`
		New     string `json:"new"     binding:"required,min=8"`
	}
	httpez.Register[pwIn, gin.H](ez, httpez.Action[pwIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/me/password",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *pwIn) (gin.H, error) {
			ctx := c.Request.Context()
			u, err := d.Users.GetByID(ctx, c.GetString("userId"))
			if err != nil {
				return nil, httpez.Internal("db error", err)
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			if !utils.CheckPassword(in.Current, u.PasswordHash) {
				return nil, httpez.Unauthorized("wrong current password")
			}
			if err := d.Users.UpdatePassword(ctx, u.ID, utils.HashPassword(in.New)); err != nil {
				return nil, httpez.Internal("update password failed", err)
			}
			return gin.H{"ok": true}, nil
		},
	})

	type emailIn struct {
		NewEmail string `json:"newEmail" binding:"required,email"`
	}
	httpez.Register[emailIn, gin.H](ez, httpez.Action[emailIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/me/email",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *emailIn) (gin.H, error) {
			ctx := c.Request.Context()
			newEmail := strings.ToLower(strings.TrimSpace(in.NewEmail))
			taken, err := d.Users.FindByEmail(ctx, newEmail)
			if err != nil {
				return nil, httpez.Internal("db error", err)
			}
			if taken != nil {
				return nil, httpez.Conflict("email already registered")
			}
			req, err := d.Users.RequestEmailChange(ctx, c.GetString("userId"), newEmail)
			if err != nil {
				return nil, httpez.Internal("request email change failed", err)
			}
			link := d.PublicBaseURL + "/admin/confirm-email?token=" + req.Token
			body := "Confirm your new address for this site account.\n\n" +
				"Confirmation link (valid 24 hours): " + link + "\n"
			if err := d.Mail.Send(ctx, mailMessage(newEmail, "Confirm email change", body)); err != nil {
				return nil, httpez.Internal("send mail failed", err)
			}
			return gin.H{"sent": true}, nil
		},
	})
}
