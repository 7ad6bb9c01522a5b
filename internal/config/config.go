package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite3"

	// ChartLookback is the trailing window plotted by the chart handler.
	ChartLookback = 24 * time.Hour
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	Database Database

	ChartLookback time.Duration
}

// Database describes how a request reaches the readings store. Table is
// interpolated into SQL, so LoadFromEnv only accepts plain identifiers.
type Database struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Table    string
	SSLMode  string

	// Path is the SQLite file used when Driver is sqlite3 and DSN is empty.
	Path string

	// Location is the zone the store's naive timestamps are read in.
	Location       *time.Location
	ConnectTimeout time.Duration
}

func newViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("app_env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")

	v.SetDefault("db_driver", DriverMySQL)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_user", "root")
	v.SetDefault("db_password", "pass")
	v.SetDefault("db_name", "AirQuality")
	v.SetDefault("db_table", "ParticlePM25")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_connect_timeout", "5s")
	v.SetDefault("sqlite_path", "../dev/sqlite/airquality.db")

	v.AutomaticEnv()

	if file := strings.TrimSpace(os.Getenv("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("CONFIG_FILE %q: %w", file, err)
		}
	}
	return v, nil
}

// str returns the trimmed value for key, falling back to def when the
// configured value is blank.
func str(v *viper.Viper, key, def string) string {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return def
	}
	return s
}

func LoadFromEnv() (Config, error) {
	v, err := newViper()
	if err != nil {
		return Config{}, err
	}

	appEnv := str(v, "app_env", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(str(v, "log_level", "info"))
	if err != nil {
		return Config{}, err
	}

	database, err := loadDatabase(v)
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:        appEnv,
		LogLevel:      level,
		HTTPAddr:      str(v, "http_addr", ":8080"),
		Database:      database,
		ChartLookback: ChartLookback,
	}, nil
}

func loadDatabase(v *viper.Viper) (Database, error) {
	driver := str(v, "db_driver", DriverMySQL)
	if driver == "postgres" {
		driver = DriverPostgres
	}
	switch driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return Database{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: mysql, pgx, sqlite3)", driver)
	}

	portStr := str(v, "db_port", strconv.Itoa(defaultPort(driver)))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Database{}, fmt.Errorf("invalid DB_PORT %q: %w", portStr, err)
	}
	if port <= 0 || port > 65535 {
		return Database{}, fmt.Errorf("invalid DB_PORT %d (must be 1-65535)", port)
	}

	table := str(v, "db_table", "ParticlePM25")
	if !identifierRe.MatchString(table) {
		return Database{}, fmt.Errorf("invalid DB_TABLE %q (must be a plain SQL identifier)", table)
	}

	tz := str(v, "db_timezone", defaultTimezone(driver))
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Database{}, fmt.Errorf("invalid DB_TIMEZONE %q: %w", tz, err)
	}

	timeoutStr := str(v, "db_connect_timeout", "5s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return Database{}, fmt.Errorf("invalid DB_CONNECT_TIMEOUT %q: %w", timeoutStr, err)
	}

	return Database{
		Driver:         driver,
		DSN:            strings.TrimSpace(v.GetString("db_dsn")),
		Host:           str(v, "db_host", "localhost"),
		Port:           port,
		User:           str(v, "db_user", "root"),
		Password:       v.GetString("db_password"),
		Name:           str(v, "db_name", "AirQuality"),
		Table:          table,
		SSLMode:        str(v, "db_sslmode", "disable"),
		Path:           str(v, "sqlite_path", "../dev/sqlite/airquality.db"),
		Location:       loc,
		ConnectTimeout: timeout,
	}, nil
}

// defaultTimezone matches the zone the store writes ts_created in. SQLite's
// CURRENT_TIMESTAMP is always UTC.
func defaultTimezone(driver string) string {
	if driver == DriverSQLite {
		return "UTC"
	}
	return "Local"
}

func defaultPort(driver string) int {
	if driver == DriverPostgres {
		return 5432
	}
	return 3306
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
