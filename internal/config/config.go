package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	DocumentKey       string
	SessionSecret     string
	GinMode           string
	AdminPasswordHash string
	RemindersEnabled  bool
	ReminderInterval  time.Duration
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 当前目录存在 .env 时先加载，已有环境变量优先。
func Load() AppConfig {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] failed to load .env: %v", err)
	}

	port := envOrDefault("PORT", "8080")

	listenAddr := envOrDefault("LISTEN_ADDR", fmt.Sprintf(":%s", port))

	reminderInterval := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("REMINDER_INTERVAL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			reminderInterval = parsed
		} else {
			log.Printf("[config] invalid REMINDER_INTERVAL %q, using %s", raw, reminderInterval)
		}
	}

	remindersEnabled := true
	if raw := strings.TrimSpace(os.Getenv("REMINDERS_ENABLED")); raw != "" {
		if parsed, err := strconv.ParseBool(raw); err == nil {
			remindersEnabled = parsed
		}
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      envOrDefault("DATABASE_PATH", "habitlog.db"),
		DocumentKey:       envOrDefault("DOCUMENT_KEY", "default"),
		SessionSecret:     envOrDefault("SESSION_SECRET", "habitlog-dev-secret"),
		GinMode:           envOrDefault("GIN_MODE", "release"),
		AdminPasswordHash: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD_HASH")),
		RemindersEnabled:  remindersEnabled,
		ReminderInterval:  reminderInterval,
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}
