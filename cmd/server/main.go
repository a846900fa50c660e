package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/handler"
	"github.com/habitlog/internal/reminder"
	"github.com/habitlog/internal/router"
	"github.com/habitlog/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := service.NewSnapshotStore(db.DB, cfg.DocumentKey)
	tracker, err := service.NewTrackerService(ctx, store)
	if err != nil {
		log.Fatalf("failed to load habit document: %v", err)
	}

	if cfg.RemindersEnabled {
		scanner := reminder.NewScanner(tracker, reminder.LogNotifier{}, cfg.ReminderInterval)
		go scanner.Run(ctx)
	}

	api := handler.NewAPI(tracker, cfg.AdminPasswordHash)
	if !api.AuthEnabled() {
		log.Printf("[config] ADMIN_PASSWORD_HASH not set, API is open")
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.SessionSecret)
	log.Printf("[server] listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
