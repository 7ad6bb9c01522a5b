package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"airquality-server/internal/app"
	"airquality-server/internal/config"
	"airquality-server/internal/logging"
)

const appName = "airquality-server"

// Default version is "dev" if not set with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Under CGI stdout carries the response.
	cgiMode := os.Getenv("GATEWAY_INTERFACE") != ""
	var logOut io.Writer = os.Stdout
	if cgiMode {
		logOut = os.Stderr
	}
	logger := logging.New(logOut, cfg, version, appName)
	slog.SetDefault(logger)

	if cgiMode {
		if err := app.ServeCGI(cfg, logger); err != nil {
			slog.Error("cgi request failed", "err", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}

	slog.Info("shutting down")
}
