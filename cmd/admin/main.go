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

	r := router.NewAdminEngine(log, a.RouterDeps())

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	host4human := cfg.App.Admin.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("backend", cfg.DB.Backend),
		zap.String("open", "http://"+host4human+":"+fmt.Sprint(cfg.App.Admin.Port)+"/admin/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}
