package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"

	"airquality-server/internal/config"
)

// New builds the process logger. Under CGI the response is written to
// stdout, so callers pass os.Stderr there.
func New(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	if version == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
