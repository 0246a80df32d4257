package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// 路由模块：一个功能块（内容、账号、设置……）实现其中一个或两个接口，
// 由引擎装配时注册。同一个模块可以同时出现在公开面和后台面
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 每个引擎自己的注册表；启动期单线程装配，不需要锁
type Registry struct {
	apiMods   []APIModule
	adminMods []AdminModule
}

// Add 统一注册入口：根据类型断言分发到 API/Admin 列表
func (r *Registry) Add(mod any) {
	if m, ok := mod.(APIModule); ok {
		r.apiMods = append(r.apiMods, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.adminMods = append(r.adminMods, m)
	}
}

// MountAPI 按优先级把所有 API 模块挂到分组上
func (r *Registry) MountAPI(api *gin.RouterGroup) {
	mods := append([]APIModule(nil), r.apiMods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(api)
	}
}

// MountAdmin 按优先级把所有 Admin 模块挂到分组上
func (r *Registry) MountAdmin(admin *gin.RouterGroup) {
	mods := append([]AdminModule(nil), r.adminMods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
