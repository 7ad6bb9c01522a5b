package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"CONFIG_FILE",
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR",
	"DB_DRIVER", "DB_DSN", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD",
	"DB_NAME", "DB_TABLE", "DB_SSLMODE", "DB_TIMEZONE", "DB_CONNECT_TIMEOUT",
	"SQLITE_PATH",
}

// clearEnv blanks every variable LoadFromEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}

	if got.AppEnv != "dev" {
		t.Errorf("AppEnv = %q, want %q", got.AppEnv, "dev")
	}
	if got.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", got.LogLevel, slog.LevelInfo)
	}
	if got.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8080")
	}
	if got.ChartLookback != 24*time.Hour {
		t.Errorf("ChartLookback = %v, want 24h", got.ChartLookback)
	}

	db := got.Database
	if db.Driver != DriverMySQL {
		t.Errorf("Driver = %q, want %q", db.Driver, DriverMySQL)
	}
	if db.Host != "localhost" || db.Port != 3306 {
		t.Errorf("Host:Port = %s:%d, want localhost:3306", db.Host, db.Port)
	}
	if db.Name != "AirQuality" {
		t.Errorf("Name = %q, want AirQuality", db.Name)
	}
	if db.Table != "ParticlePM25" {
		t.Errorf("Table = %q, want ParticlePM25", db.Table)
	}
	if db.Location != time.Local {
		t.Errorf("Location = %v, want Local", db.Location)
	}
	if db.ConnectTimeout != 5*time.Second {
		t.Errorf("ConnectTimeout = %v, want 5s", db.ConnectTimeout)
	}
}

func TestLoadFromEnv_AppEnv_Valid(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
		want   string
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod", appEnv: "prod", want: "prod"},
		{name: "dev with whitespace", appEnv: "  dev  ", want: "dev"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_AppEnv_Invalid(t *testing.T) {
	for _, appEnv := range []string{"staging", "qa", "DEV", "whatever"} {
		t.Run(appEnv, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", appEnv)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() error = nil, want non-nil")
			}
		})
	}
}

func TestLoadFromEnv_HTTPAddr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "default when empty", in: "", want: ":8080"},
		{name: "trims whitespace", in: "  :9090  ", want: ":9090"},
		{name: "host:port", in: "127.0.0.1:8081", want: "127.0.0.1:8081"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("HTTP_ADDR", tt.in)

			got, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.HTTPAddr != tt.want {
				t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Database(t *testing.T) {
	t.Run("postgres alias and default port", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "postgres")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.Database.Driver != DriverPostgres {
			t.Errorf("Driver = %q, want %q", got.Database.Driver, DriverPostgres)
		}
		if got.Database.Port != 5432 {
			t.Errorf("Port = %d, want 5432", got.Database.Port)
		}
	})

	t.Run("sqlite defaults to UTC", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "sqlite3")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.Database.Location != time.UTC {
			t.Errorf("Location = %v, want UTC", got.Database.Location)
		}
	})

	t.Run("sqlite timezone can be overridden", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "sqlite3")
		t.Setenv("DB_TIMEZONE", "Local")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.Database.Location != time.Local {
			t.Errorf("Location = %v, want Local", got.Database.Location)
		}
	})

	t.Run("explicit values propagate", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_DRIVER", "sqlite3")
		t.Setenv("SQLITE_PATH", "/tmp/aq.db")
		t.Setenv("DB_TABLE", "Readings_2")
		t.Setenv("DB_TIMEZONE", "UTC")
		t.Setenv("DB_CONNECT_TIMEOUT", "250ms")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		db := got.Database
		if db.Driver != DriverSQLite || db.Path != "/tmp/aq.db" || db.Table != "Readings_2" {
			t.Errorf("Database = %+v", db)
		}
		if db.Location != time.UTC {
			t.Errorf("Location = %v, want UTC", db.Location)
		}
		if db.ConnectTimeout != 250*time.Millisecond {
			t.Errorf("ConnectTimeout = %v, want 250ms", db.ConnectTimeout)
		}
	})

	invalid := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown driver", key: "DB_DRIVER", val: "oracle"},
		{name: "non-numeric port", key: "DB_PORT", val: "abc"},
		{name: "port out of range", key: "DB_PORT", val: "70000"},
		{name: "table with injection", key: "DB_TABLE", val: "ParticlePM25; DROP TABLE x"},
		{name: "table with quote", key: "DB_TABLE", val: "a`b"},
		{name: "unknown timezone", key: "DB_TIMEZONE", val: "Mars/Olympus"},
		{name: "bad timeout", key: "DB_CONNECT_TIMEOUT", val: "soon"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.val)
			}
		})
	}
}

func TestLoadFromEnv_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "db_host: db.internal\ndb_name: Outdoor\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAME", "FromEnv")

	got, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v, want nil", err)
	}
	if got.Database.Host != "db.internal" {
		t.Errorf("Host = %q, want db.internal", got.Database.Host)
	}
	if got.Database.Name != "FromEnv" {
		t.Errorf("Name = %q, want env to win over file", got.Database.Name)
	}
	if got.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", got.LogLevel)
	}
}

func TestLoadFromEnv_ConfigFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() error = nil, want error for missing CONFIG_FILE")
	}
}

func TestParseLogLevel_Valid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "debug", in: "debug", want: slog.LevelDebug},
		{name: "info", in: "info", want: slog.LevelInfo},
		{name: "warn", in: "warn", want: slog.LevelWarn},
		{name: "warning", in: "warning", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "case insensitive", in: "DeBuG", want: slog.LevelDebug},
		{name: "trims whitespace", in: "  warn \n", want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLogLevel(tt.in)
			if err != nil {
				t.Fatalf("parseLogLevel(%q) error = %v, want nil", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLogLevel_Invalid(t *testing.T) {
	for _, in := range []string{"", "nope", "warns", "1"} {
		t.Run(in, func(t *testing.T) {
			got, err := parseLogLevel(in)
			if err == nil {
				t.Fatalf("parseLogLevel(%q) error = nil, want non-nil", in)
			}
			if got != slog.LevelInfo {
				t.Errorf("parseLogLevel(%q) = %v, want %v on error", in, got, slog.LevelInfo)
			}
		})
	}
}
