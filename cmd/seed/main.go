// seed 一次性工具：用种子文件整体重建站点内容（删光再写，慎用）。
//
//	go run ./cmd/seed -seed ./seed.json [-yes]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"seasonal-cms/internal/app"
	"seasonal-cms/internal/core/config"
	"seasonal-cms/internal/core/logger"
	"seasonal-cms/internal/feature/content"
)

func main() {
	seedPath := flag.String("seed", "./seed.json", "seed JSON file, one field per content section")
	yes := flag.Bool("yes", false, "skip confirmation")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	raw, err := os.ReadFile(*seedPath)
	if err != nil {
		log.Fatal("read seed file", zap.Error(err))
	}
	var seed content.Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal("parse seed file", zap.Error(err))
	}

	if !*yes {
		fmt.Printf("This wipes ALL content on backend %q and reseeds from %s. Type 'yes' to continue: ", cfg.DB.Backend, *seedPath)
		var in string
		_, _ = fmt.Scanln(&in)
		if in != "yes" {
			fmt.Println("aborted")
			return
		}
	}

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Content.ResetWithSeed(ctx, seed); err != nil {
		log.Fatal("reset failed", zap.Error(err))
	}
	log.Info("content reseeded", zap.String("backend", cfg.DB.Backend), zap.String("seed", *seedPath))
}
