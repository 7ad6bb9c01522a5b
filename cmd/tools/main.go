package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"airquality-server/internal/app"
	"airquality-server/internal/config"
	"airquality-server/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <command>\n  migrate  apply pending schema migrations to the SQLite store\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg, "dev", "airquality-tools")
	slog.SetDefault(logger)

	switch os.Args[1] {
	case "migrate":
		n, err := app.Migrate(context.Background(), cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("migrations applied: %d\n", n)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}
