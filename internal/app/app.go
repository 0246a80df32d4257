package app

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"seasonal-cms/internal/core/auth"
	"seasonal-cms/internal/core/cache"
	"seasonal-cms/internal/core/config"
	"seasonal-cms/internal/core/database"
	"seasonal-cms/internal/core/mail"
	"seasonal-cms/internal/domain"
	"seasonal-cms/internal/feature/content"
	"seasonal-cms/internal/feature/settings"
	"seasonal-cms/internal/feature/user"
	"seasonal-cms/internal/repo"
	"seasonal-cms/internal/transport/http/router"
)

// App 启动期装配：选后端、开库、建仓储、拼服务。
// 两个 HTTP 入口和 seeder 共用，保证三个进程对后端的理解一致。
type App struct {
	Cfg      *config.Config
	DB       *gorm.DB
	Store    *repo.Store
	Content  *content.Service
	Users    *user.Service
	Settings *settings.Service
	Mail     mail.Sender
	JWT      *auth.JWTer
	Cache    *cache.Cache
}

// Build 失败直接返回错误，由 main Fatal；后端选择在这里落定，之后不再变
func Build(cfg *config.Config, log *zap.Logger) (*App, error) {
	driver, dsn := resolveBackend(cfg)
	db, err := database.NewGorm(database.Opts{
		Driver:             driver,
		DSN:                dsn,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	log.Info("database connected",
		zap.String("backend", cfg.DB.Backend),
		zap.String("driver", driver),
	)

	st, err := repo.New(db)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := st.AutoMigrate(db, cfg.UseHosted()); err != nil {
			return nil, err
		}
		log.Info("automigrate done")
	}

	contentSvc := content.NewService(st.Content, log)
	userSvc := user.NewService(st.Users, st.ResetTokens, st.EmailChange, log)

	// 设置存储按后端二选一：托管走 settings 表，嵌入式投影到内容行
	var settingsStore domain.SettingsStore
	if cfg.UseHosted() {
		settingsStore = repo.NewSettingsRepo(db)
	} else {
		settingsStore = settings.NewContentFallback(contentSvc)
	}
	settingsSvc := settings.NewService(settingsStore)

	var sender mail.Sender
	if cfg.SMTP.Host != "" {
		sender = mail.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Pass, cfg.SMTP.From)
	} else {
		sender = &mail.LogOnly{Log: log}
		log.Warn("smtp not configured, mails are log-only")
	}

	var cc *cache.Cache
	if cfg.Redis.Addr != "" {
		cc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("content cache enabled", zap.String("redis", cfg.Redis.Addr))
	}

	return &App{
		Cfg:      cfg,
		DB:       db,
		Store:    st,
		Content:  contentSvc,
		Users:    userSvc,
		Settings: settingsSvc,
		Mail:     sender,
		JWT: &auth.JWTer{
			Secret: []byte(cfg.JWT.Secret),
			Issuer: cfg.JWT.Issuer,
			TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		},
		Cache: cc,
	}, nil
}

// RouterDeps 路由层依赖
func (a *App) RouterDeps() *router.Deps {
	ttl := time.Duration(a.Cfg.Cache.ContentTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &router.Deps{
		JWT:           a.JWT,
		Content:       a.Content,
		Users:         a.Users,
		Settings:      a.Settings,
		Mail:          a.Mail,
		Cache:         a.Cache,
		ContentTTL:    ttl,
		PublicBaseURL: a.Cfg.App.PublicBaseURL,
	}
}

// resolveBackend 后端开关 -> gorm 方言：嵌入式 = 本地 sqlite 文件，托管 = postgres DSN
func resolveBackend(cfg *config.Config) (driver, dsn string) {
	if cfg.UseHosted() {
		return "postgres", cfg.DB.DSN
	}
	path := cfg.DB.SQLitePath
	if path == "" {
		path = "./data/site.db"
	}
	return "sqlite", path
}
