package main

import (
	"context"
	"fmt"
	"os"

	"github.com/habitlog/internal/config"
	"github.com/habitlog/internal/db"
	"github.com/habitlog/internal/service"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "habitctl",
		Short:        "Inspect and maintain the habit tracker document",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openTracker 按服务端相同的配置加载文档
func openTracker(ctx context.Context) (*service.TrackerService, error) {
	cfg := config.Load()
	if err := db.Init(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return service.NewTrackerService(ctx, service.NewSnapshotStore(db.DB, cfg.DocumentKey))
}
