package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"seasonal-cms/internal/core/auth"
	mdw "seasonal-cms/internal/transport/http/middleware"
)

// NewAdminEngine 后台 API：内容管理、账号管理、站点设置（统一要求主账号）
func NewAdminEngine(l *zap.Logger, d *Deps) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(100, 200),
		mdw.ConcurrencyLimit(100),
		mdw.MaxBodyBytes(4<<20),
		mdw.Timeout(15*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.JWT, auth.RoleAdmin))
	newRegistry(d).MountAdmin(admin)

	return r
}
