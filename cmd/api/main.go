package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"seasonal-cms/internal/app"
	"seasonal-cms/internal/core/config"
	"seasonal-cms/internal/core/logger"
	"seasonal-cms/internal/core/server"
	"seasonal-cms/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}

	r := router.NewAPIEngine(log, a.RouterDeps())

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("site api starting",
		zap.String("addr", addr),
		zap.String("backend", cfg.DB.Backend),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("site api start FAILED", zap.Error(err))
		}
	}()
	log.Info("site api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("site api stopped gracefully")
}
