package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cgi"
	"time"

	"airquality-server/internal/config"
	"airquality-server/internal/db"
	"airquality-server/internal/httpapi"
	"airquality-server/internal/migrate"
	"airquality-server/internal/modules/airquality"
	"airquality-server/internal/modules/airquality/repository"
)

const shutdownTimeout = 10 * time.Second

// NewHandler wires every route onto one mux behind the request logger. The
// same handler serves both CGI and server mode.
func NewHandler(cfg config.Config, logger *slog.Logger) http.Handler {
	connector := repository.NewConnector(cfg.Database, logger)
	mux := httpapi.NewMux(connector)
	airquality.RegisterFeature(mux, connector, cfg.ChartLookback)
	return httpapi.RequestLogger(mux)
}

// Migrate applies the embedded development schema. Only SQLite is managed
// here; the MySQL and PostgreSQL stores are provisioned outside this repo.
func Migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) (int, error) {
	if cfg.Database.Driver != config.DriverSQLite {
		return 0, fmt.Errorf("migrate: driver %q is not managed (only %s)", cfg.Database.Driver, config.DriverSQLite)
	}
	conn, err := db.Open(ctx, cfg.Database, logger)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()
	return migrate.Run(ctx, conn.DB)
}

// ServeCGI answers the single request described by the CGI environment.
func ServeCGI(cfg config.Config, logger *slog.Logger) error {
	return cgi.Serve(NewHandler(cfg, logger))
}

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Database.Driver,
		"dbHost", cfg.Database.Host,
		"dbPort", cfg.Database.Port,
		"dbName", cfg.Database.Name,
		"dbTable", cfg.Database.Table,
		"dbTimezone", cfg.Database.Location.String(),
		"chartLookback", cfg.ChartLookback,
	)

	if cfg.Database.Driver == config.DriverSQLite {
		n, err := Migrate(ctx, cfg, logger)
		if err != nil {
			return err
		}
		slog.Info("migrations applied", "count", n)
	}

	srv := httpapi.NewServer(cfg, NewHandler(cfg, logger))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
