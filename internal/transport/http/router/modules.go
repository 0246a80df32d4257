package router

import (
	"github.com/gin-gonic/gin"

	httpez "seasonal-cms/internal/transport/http/ez"
	mdw "seasonal-cms/internal/transport/http/middleware"
)

// contentModule 站点内容：公开面只读，后台面全量管理。读流量最大，最先挂
type contentModule struct{ d *Deps }

func (m *contentModule) Priority() int { return 10 }

func (m *contentModule) MountAPI(g *gin.RouterGroup) {
	mountContentRead(httpez.New(g), m.d)
}

func (m *contentModule) MountAdmin(g *gin.RouterGroup) {
	mountAdminContent(httpez.New(g), m.d)
}

// usersModule 账号：公开面是注册/登录/找回和登录态自助操作，后台面是账号管理
type usersModule struct{ d *Deps }

func (m *usersModule) Priority() int { return 20 }

func (m *usersModule) MountAPI(g *gin.RouterGroup) {
	mountAuthActions(httpez.New(g), m.d)

	authed := g.Group("")
	authed.Use(mdw.AuthJWT(m.d.JWT, ""))
	mountAccountActions(httpez.New(authed), m.d)
}

func (m *usersModule) MountAdmin(g *gin.RouterGroup) {
	mountAdminUsers(httpez.New(g), m.d)
}

// settingsModule 站点设置：只有后台面
type settingsModule struct{ d *Deps }

func (m *settingsModule) MountAdmin(g *gin.RouterGroup) {
	mountAdminSettings(httpez.New(g), m.d)
}

// contactModule 联系表单：只有公开面
type contactModule struct{ d *Deps }

func (m *contactModule) MountAPI(g *gin.RouterGroup) {
	mountContact(httpez.New(g), m.d)
}

// newRegistry 两个引擎共用同一份模块清单，各挂自己的那一面
func newRegistry(d *Deps) *Registry {
	reg := &Registry{}
	reg.Add(&contentModule{d})
	reg.Add(&usersModule{d})
	reg.Add(&settingsModule{d})
	reg.Add(&contactModule{d})
	return reg
}
