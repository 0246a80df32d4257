package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name          string
	Env           string
	PublicBaseURL string // 拼重置密码/确认邮箱链接用
	HTTP          HTTP
	Admin         AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"` // 空 = 不启用内容缓存
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Cache struct {
	ContentTTLSec int
}

type DB struct {
	// Backend: "embedded"（本地 sqlite）或 "hosted"（托管 postgres）。
	// 环境变量 SITE_USE_HOSTED 为真值字符串时强制 hosted，启动时读一次，之后不变。
	Backend            string
	SQLitePath         string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string // 空 Host = 邮件只打日志
}

type Config struct {
	App   App
	Log   Log
	JWT   JWT
	DB    DB
	Redis Redis `mapstructure:"redis"`
	Cache Cache
	SMTP  SMTP
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}

	// 后端开关：环境变量优先于配置文件
	if env := os.Getenv("SITE_USE_HOSTED"); env != "" {
		if Truthy(env) {
			c.DB.Backend = "hosted"
		} else {
			c.DB.Backend = "embedded"
		}
	}
	if c.DB.Backend == "" {
		c.DB.Backend = "embedded"
	}
	return &c
}

// UseHosted 进程级后端选择，Load 之后不再变化
func (c *Config) UseHosted() bool { return c.DB.Backend == "hosted" }

// Truthy 宽松的真值字符串判断（大小写不敏感）
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
