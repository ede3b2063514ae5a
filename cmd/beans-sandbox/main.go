package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mcoot/minibeans/internal/dependencies/clock"
	"github.com/mcoot/minibeans/internal/sandbox"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := sandbox.DefaultConfig()
	if v := os.Getenv("SANDBOX_ADMIN_PASSWORD"); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv("SANDBOX_TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}

	sb, err := sandbox.New(clock.New(), cfg, logger)
	if err != nil {
		logger.Error("failed to create sandbox", slog.String("error", err.Error()))
		os.Exit(1)
	}

	serverConfig := sandbox.DefaultServerConfig()
	if v := os.Getenv("SANDBOX_HOST"); v != "" {
		serverConfig.Host = v
	}
	if v := os.Getenv("SANDBOX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			logger.Error("invalid SANDBOX_PORT", slog.String("value", v))
			os.Exit(1)
		}
		serverConfig.Port = port
	}
	server := sandbox.NewServer(sb.Handler, serverConfig, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("sandbox stopped")
}
