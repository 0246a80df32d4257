package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"seasonal-cms/internal/domain"
	"seasonal-cms/internal/feature/content"
	"seasonal-cms/internal/feature/user"
	httpez "seasonal-cms/internal/transport/http/ez"
	"seasonal-cms/pkg/utils"
)

// ---------- 内容管理 ----------

func mountAdminContent(ez httpez.EZ, d *Deps) {
	httpez.Register[struct{}, []domain.Content](ez, httpez.Action[struct{}, []domain.Content]{
		Method: http.MethodGet,
		Path:   "/content",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Content, error) {
			return d.Content.List(c.Request.Context())
		},
	})

	httpez.Register[struct{}, *domain.Content](ez, httpez.Action[struct{}, *domain.Content]{
		Method: http.MethodGet,
		Path:   "/content/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Content, error) {
			rec, err := d.Content.GetByID(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load content failed", err)
			}
			if rec == nil {
				return nil, httpez.NotFound("content not found")
			}
			return rec, nil
		},
	})

	// upsert：带 id 改指定行，不带 id 按 key 幂等写入
	type upsertIn struct {
		ID    string `json:"id"    binding:"omitempty,max=36"`
		Key   string `json:"key"   binding:"required,max=191"`
		Value string `json:"value" binding:"required"`
		Type  string `json:"type"  binding:"omitempty,oneof=text json html"`
	}
	httpez.Register[upsertIn, *domain.Content](ez, httpez.Action[upsertIn, *domain.Content]{
		Method: http.MethodPost,
		Path:   "/content",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *upsertIn) (*domain.Content, error) {
			typ := in.Type
			if typ == "" {
				typ = "text"
			}
			rec, err := d.Content.Upsert(c.Request.Context(), strings.TrimSpace(in.ID), in.Key, in.Value, typ)
			if errors.Is(err, domain.ErrNotFound) {
				return nil, httpez.NotFound("content id not found")
			}
			if err != nil {
				return nil, httpez.Internal("save content failed", err)
			}
			d.invalidateContentCache(c.Request.Context())
			return rec, nil
		},
	})

	httpez.Register[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/content/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			// 幂等：重复删同一个 id 也成功
			if err := d.Content.Delete(c.Request.Context(), c.Param("id")); err != nil {
				return nil, httpez.Internal("delete content failed", err)
			}
			d.invalidateContentCache(c.Request.Context())
			return gin.H{"id": c.Param("id")}, nil
		},
	})

	httpez.Register[content.Seed, gin.H](ez, httpez.Action[content.Seed, gin.H]{
		Method: http.MethodPost,
		Path:   "/content/reset",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *content.Seed) (gin.H, error) {
			if err := d.Content.ResetWithSeed(c.Request.Context(), *in); err != nil {
				return nil, httpez.Internal("reset content failed", err)
			}
			d.invalidateContentCache(c.Request.Context())
			return gin.H{"ok": true}, nil
		},
	})
}

// ---------- 账号管理 ----------

func mountAdminUsers(ez httpez.EZ, d *Deps) {
	httpez.Register[struct{}, []userOut](ez, httpez.Action[struct{}, []userOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]userOut, error) {
			us, err := d.Users.List(c.Request.Context())
			if err != nil {
				return nil, httpez.Internal("list users failed", err)
			}
			out := make([]userOut, 0, len(us))
			for i := range us {
				out = append(out, toUserOut(&us[i]))
			}
			return out, nil
		},
	})

	type createIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		IsMaster bool   `json:"isMaster"`
	}
	httpez.Register[createIn, userOut](ez, httpez.Action[createIn, userOut]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (userOut, error) {
			email := strings.ToLower(strings.TrimSpace(in.Email))
			u, err := d.Users.CreateAdmin(c.Request.Context(), email, utils.HashPassword(in.Password), in.IsMaster)
			if errors.Is(err, domain.ErrEmailTaken) {
				return userOut{}, httpez.Conflict("email already registered")
			}
			if err != nil {
				return userOut{}, httpez.Internal("create user failed", err)
			}
			return toUserOut(u), nil
		},
	})

	// PATCH 部分更新：没传的字段不动
	type patchIn struct {
		Email    *string `json:"email"    binding:"omitempty,email"`
		Password *string `json:"password" binding:"omitempty,min=8"`
		IsMaster *bool   `json:"isMaster"`
	}
	httpez.Register[patchIn, userOut](ez, httpez.Action[patchIn, userOut]{
		Method: http.MethodPatch,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *patchIn) (userOut, error) {
			ctx := c.Request.Context()
			id := c.Param("id")

			if in.IsMaster != nil && !*in.IsMaster {
				if err := guardLastMaster(c, d, id); err != nil {
					return userOut{}, err
				}
			}

			upd := user.UpdateInput{IsMaster: in.IsMaster}
			if in.Email != nil {
				e := strings.ToLower(strings.TrimSpace(*in.Email))
				upd.Email = &e
			}
			if in.Password != nil {
				h := utils.HashPassword(*in.Password)
				upd.PasswordHash = &h
			}

			u, err := d.Users.UpdateAdmin(ctx, id, upd)
			if errors.Is(err, domain.ErrNotFound) {
				return userOut{}, httpez.NotFound("user not found")
			}
			if errors.Is(err, domain.ErrEmailTaken) {
				return userOut{}, httpez.Conflict("email already registered")
			}
			if err != nil {
				return userOut{}, httpez.Internal("update user failed", err)
			}
			return toUserOut(u), nil
		},
	})

	httpez.Register[struct{}, gin.H](ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := guardLastMaster(c, d, id); err != nil {
				return nil, err
			}
			if err := d.Users.Delete(c.Request.Context(), id); err != nil {
				return nil, httpez.Internal("delete user failed", err)
			}
			return gin.H{"id": id}, nil
		},
	})

	type masterIn struct {
		IsMaster bool `json:"isMaster"`
	}
	httpez.Register[masterIn, gin.H](ez, httpez.Action[masterIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/master",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *masterIn) (gin.H, error) {
			id := c.Param("id")
			if !in.IsMaster {
				if err := guardLastMaster(c, d, id); err != nil {
					return nil, err
				}
			}
			if err := d.Users.SetMasterFlag(c.Request.Context(), id, in.IsMaster); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, httpez.NotFound("user not found")
				}
				return nil, httpez.Internal("set master flag failed", err)
			}
			return gin.H{"id": id, "isMaster": in.IsMaster}, nil
		},
	})
}

// guardLastMaster 删除/降级目标是主账号且只剩它一个时拒绝——站点随时要留一个主账号
func guardLastMaster(c *gin.Context, d *Deps, id string) error {
	ctx := c.Request.Context()
	u, err := d.Users.GetByID(ctx, id)
	if err != nil {
		return httpez.Internal("db error", err)
	}
	if u == nil || !u.IsMaster {
		return nil
	}
	n, err := d.Users.CountMasters(ctx)
	if err != nil {
		return httpez.Internal("db error", err)
	}
	if n <= 1 {
		return httpez.BadRequest("cannot remove the last master account")
	}
	return nil
}

// ---------- 站点设置 ----------

func mountAdminSettings(ez httpez.EZ, d *Deps) {
	httpez.Register[struct{}, []domain.Setting](ez, httpez.Action[struct{}, []domain.Setting]{
		Method: http.MethodGet,
		Path:   "/settings",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Setting, error) {
			return d.Settings.List(c.Request.Context())
		},
	})

	type settingIn struct {
		Value string `json:"value" binding:"required"` // JSON 编码后的值
	}
	httpez.Register[settingIn, *domain.Setting](ez, httpez.Action[settingIn, *domain.Setting]{
		Method: http.MethodPut,
		Path:   "/settings/:key",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *settingIn) (*domain.Setting, error) {
			s, err := d.Settings.Upsert(c.Request.Context(), c.Param("key"), in.Value)
			if errors.Is(err, domain.ErrUnsupportedSettingKey) {
				// 嵌入式后端只支持 SITE_NAME / USER_EMAIL，这是有意保留的能力差
				return nil, httpez.BadRequest("unsupported setting key for this backend")
			}
			if err != nil {
				return nil, httpez.Internal("save setting failed", err)
			}
			d.invalidateContentCache(c.Request.Context())
			return s, nil
		},
	})
}
