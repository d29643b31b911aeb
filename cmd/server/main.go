package main

import (
	"context"
	"fmt"
	"os"

	"log/slog"

	"github.com/fanerrL/lunatv-live-go/internal/app"
	"github.com/fanerrL/lunatv-live-go/internal/config"
	"github.com/fanerrL/lunatv-live-go/internal/constants"
	"github.com/fanerrL/lunatv-live-go/internal/health"
	"github.com/fanerrL/lunatv-live-go/internal/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.NewLoggerWithLevel(cfg.Logging.Level)
	if cfg.Logging.Dir != "" {
		fileLogger, err := util.EnableFileLoggingWithLevel(util.LogConfig{
			Dir:        cfg.Logging.Dir,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}, "server.log", cfg.Logging.Level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize file logging: %v\n", err)
			os.Exit(1)
		}
		logger = fileLogger
	}
	slog.SetDefault(logger)

	health.Init(cfg.Version)

	logger.Info("LunaTV live watch server starting...",
		slog.String("version", cfg.Version),
		slog.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), constants.AppTimeout.Build)
	runtime, err := app.BuildRuntime(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", slog.Any("error", err))
		os.Exit(1)
	}
	defer runtime.Close()

	runtime.Run()
}
