package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-daterange/internal/app/server"
	"github.com/goliatone/go-daterange/internal/config"
	"github.com/goliatone/go-daterange/internal/sl"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (CONFIG_PATH when empty)")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	logger.Info("starting daterange-server", slog.String("env", cfg.Env))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.New(cfg, logger, nil)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("daterange-server stopped gracefully")
}
