package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"airquality-server/internal/config"
)

// ConnectionError reports that the store could not be reached: bad
// credentials, a missing database or an unreachable host.
type ConnectionError struct {
	Database string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to database %q: %v", e.Database, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Open establishes a single connection to the configured store and verifies
// it with a ping. The caller owns the returned handle and must Close it.
func Open(ctx context.Context, cfg config.Database, logger *slog.Logger) (*sqlx.DB, error) {
	drv, dsn, err := driverFor(cfg)
	if err != nil {
		return nil, &ConnectionError{Database: cfg.Name, Err: err}
	}

	connector, err := NewLoggingConnector(drv, dsn, logger)
	if err != nil {
		return nil, &ConnectionError{Database: cfg.Name, Err: err}
	}

	conn := sql.OpenDB(connector)
	// One request, one connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Database: cfg.Name, Err: fmt.Errorf("db ping: %w", err)}
	}

	return sqlx.NewDb(conn, cfg.Driver), nil
}

func Close(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func driverFor(cfg config.Database) (driver.Driver, string, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return &mysql.MySQLDriver{}, mysqlDSN(cfg), nil
	case config.DriverPostgres:
		return stdlib.GetDefaultDriver(), postgresDSN(cfg), nil
	case config.DriverSQLite:
		dsn, err := sqliteDSN(cfg)
		if err != nil {
			return nil, "", err
		}
		return &sqlite3.SQLiteDriver{}, dsn, nil
	default:
		return nil, "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func mysqlDSN(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	if cfg.Location != nil {
		mc.Loc = cfg.Location
	}
	mc.Timeout = cfg.ConnectTimeout
	return mc.FormatDSN()
}

func postgresDSN(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	parts := []string{
		"host=" + cfg.Host,
		"port=" + strconv.Itoa(cfg.Port),
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
		"sslmode=" + cfg.SSLMode,
	}
	if secs := int(cfg.ConnectTimeout.Seconds()); secs > 0 {
		parts = append(parts, "connect_timeout="+strconv.Itoa(secs))
	}
	return strings.Join(parts, " ")
}

func sqliteDSN(cfg config.Database) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	// If caller provided something like "file:/data/app.db?x=y" as Path, don’t double-wrap
	path := cfg.Path
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	// Ensure directory exists for file-backed sqlite db
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
