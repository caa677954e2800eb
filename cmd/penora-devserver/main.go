package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"penora-write/internal/devserver"
	"penora-write/shared/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env в production может отсутствовать
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := devserver.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	encoding := "json"
	if cfg.Env == "development" {
		encoding = "console"
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: encoding})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Configuration loaded",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("generationBackend", cfg.Generation.Backend),
		zap.Bool("googleLogin", cfg.GoogleClientID != ""),
		zap.Bool("metrics", cfg.MetricsEnabled),
	)

	srv, err := devserver.New(cfg, devserver.Deps{}, log)
	if err != nil {
		log.Fatal("Failed to create dev server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatal("HTTP Server error", zap.Error(err))
	}
}
