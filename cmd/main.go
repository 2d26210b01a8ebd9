// Package main provides the entry point for the logcask key-value store.
// It initializes the logger, loads configuration, creates the storage
// engine, and dispatches to the Cobra command tree.
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/jassi-singh/logcask/internal/cli"
	"github.com/jassi-singh/logcask/internal/config"
	"github.com/jassi-singh/logcask/internal/engine"
)

func main() {
	slogHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(slogHandler))

	slog.Info("main: loading configuration")
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("main: failed to load configuration", "error", err)
		log.Fatalf("failed to load config: %v", err)
	}
	slog.Info("main: configuration loaded",
		"data_dir", cfg.DATA_DIR,
		"registry_file", cfg.REGISTRY_FILE,
		"max_segment_size", cfg.MAX_SEGMENT_SIZE,
	)

	e, err := engine.New(cfg)
	if err != nil {
		slog.Error("main: failed to initialize engine", "error", err)
		log.Fatalf("failed to create engine: %v", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			slog.Error("main: error closing engine", "error", err)
		}
	}()

	handler := cli.NewHandler(e)
	if err := handler.Root().Execute(); err != nil {
		slog.Error("main: command failed", "error", err)
		os.Exit(1)
	}
}
