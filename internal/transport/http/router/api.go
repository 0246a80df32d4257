package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"seasonal-cms/internal/domain"
	httpez "seasonal-cms/internal/transport/http/ez"
	mdw "seasonal-cms/internal/transport/http/middleware"
)

// NewAPIEngine 公开站点 API：内容读取、联系表单、注册登录与自助账号操作
func NewAPIEngine(l *zap.Logger, d *Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(), // 前端站点跨域直连
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	newRegistry(d).MountAPI(api)

	return r
}

// ---------- 公开内容读取 ----------

func mountContentRead(ez httpez.EZ, d *Deps) {
	// 整站内容一把拉，走 redis 读穿缓存（未配置缓存就直连库）
	httpez.Register[struct{}, []domain.Content](ez, httpez.Action[struct{}, []domain.Content]{
		Method: http.MethodGet,
		Path:   "/content",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Content, error) {
			if d.Cache == nil {
				return d.Content.List(c.Request.Context())
			}
			out, err := cacheListContent(c, d)
			if err != nil {
				return nil, httpez.Internal("load content failed", err)
			}
			return out, nil
		},
	})

	httpez.Register[struct{}, *domain.Content](ez, httpez.Action[struct{}, *domain.Content]{
		Method: http.MethodGet,
		Path:   "/content/key/:key",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Content, error) {
			rec, err := d.Content.GetByKey(c.Request.Context(), c.Param("key"))
			if err != nil {
				return nil, httpez.Internal("load content failed", err)
			}
			if rec == nil {
				// 查询未命中不是后端错误，只是这里没有这块内容
				return nil, httpez.NotFound("content not found")
			}
			return rec, nil
		},
	})
}

// ---------- 联系表单 ----------

func mountContact(ez httpez.EZ, d *Deps) {
	type contactIn struct {
		Name    string `json:"name"    binding:"required,max=100"`
		Email   string `json:"email"   binding:"required,email"`
		Phone   string `json:"phone"   binding:"omitempty,max=32"`
		Message string `json:"message" binding:"required,max=4000"`
	}
	httpez.Register[contactIn, gin.H](ez, httpez.Action[contactIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/contact",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *contactIn) (gin.H, error) {
			to, err := contactRecipient(c, d)
			if err != nil {
				return nil, err
			}
			body := "From: " + in.Name + " <" + in.Email + ">\n"
			if in.Phone != "" {
				body += "Phone: " + in.Phone + "\n"
			}
			body += "\n" + in.Message + "\n"
			if err := d.Mail.Send(c.Request.Context(), mailMessage(to, "Website contact form", body)); err != nil {
				return nil, httpez.Internal("send mail failed", err)
			}
			return gin.H{"sent": true}, nil
		},
	})
}

// contactRecipient 收件人从 USER_EMAIL 设置取（设置值是 JSON 编码的字符串）
func contactRecipient(c *gin.Context, d *Deps) (string, error) {
	items, err := d.Settings.List(c.Request.Context())
	if err != nil {
		return "", httpez.Internal("load settings failed", err)
	}
	for _, it := range items {
		if it.Key == domain.SettingUserEmail {
			return decodeJSONString(it.Value), nil
		}
	}
	return "", httpez.BadRequest("contact email not configured")
}
