package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "HTTP_READ_HEADER_TIMEOUT", "SHUTDOWN_TIMEOUT",
	"DB_DRIVER", "DB_DSN", "SQLITE_PATH", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME", "DB_LOG_SQL",
	"MQTT_BROKER", "MQTT_PORT", "MQTT_CLIENT_ID", "MQTT_TOPIC",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
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
	if got.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", got.HTTPAddr, ":8000")
	}
	if got.HTTPReadHeaderTimeout != 5*time.Second {
		t.Errorf("HTTPReadHeaderTimeout = %v, want 5s", got.HTTPReadHeaderTimeout)
	}
	if got.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", got.ShutdownTimeout)
	}
	if got.SQLiteDriver != "sqlite3" {
		t.Errorf("SQLiteDriver = %q, want sqlite3", got.SQLiteDriver)
	}
	if got.SQLitePath != "./iot.db" {
		t.Errorf("SQLitePath = %q, want ./iot.db", got.SQLitePath)
	}
	if got.SQLiteMaxOpenConns != 1 || got.SQLiteMaxIdleConns != 1 {
		t.Errorf("pool = %d/%d, want 1/1", got.SQLiteMaxOpenConns, got.SQLiteMaxIdleConns)
	}
	if got.SQLiteLogStatements {
		t.Error("SQLiteLogStatements = true, want false")
	}
	if got.MQTTEnabled() {
		t.Error("MQTTEnabled() = true, want false without MQTT_BROKER")
	}
	if got.MQTTPort != 1883 {
		t.Errorf("MQTTPort = %d, want 1883", got.MQTTPort)
	}
	if got.MQTTTopic != "sensors/+/readings" {
		t.Errorf("MQTTTopic = %q, want sensors/+/readings", got.MQTTTopic)
	}
	if !strings.HasPrefix(got.MQTTClientID, "iot-stream-validator-") {
		t.Errorf("MQTTClientID = %q, want generated iot-stream-validator-<uuid>", got.MQTTClientID)
	}
}

func TestLoadFromEnv_AppEnv(t *testing.T) {
	tests := []struct {
		name    string
		appEnv  string
		want    string
		wantErr bool
	}{
		{name: "dev", appEnv: "dev", want: "dev"},
		{name: "prod", appEnv: "prod", want: "prod"},
		{name: "prod with whitespace", appEnv: "\nprod\t", want: "prod"},
		{name: "staging", appEnv: "staging", wantErr: true},
		{name: "uppercase invalid", appEnv: "DEV", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("APP_ENV", tt.appEnv)

			got, err := LoadFromEnv()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("LoadFromEnv() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromEnv() error = %v, want nil", err)
			}
			if got.AppEnv != tt.want {
				t.Errorf("AppEnv = %q, want %q", got.AppEnv, tt.want)
			}
		})
	}
}

func TestLoadFromEnv_Database(t *testing.T) {
	t.Run("explicit values propagate", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SQLITE_PATH", "/data/readings.db")
		t.Setenv("DB_DSN", "file::memory:?cache=shared")
		t.Setenv("DB_MAX_OPEN_CONNS", "4")
		t.Setenv("DB_MAX_IDLE_CONNS", "2")
		t.Setenv("DB_CONN_MAX_LIFETIME", "1m")
		t.Setenv("DB_LOG_SQL", "true")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if got.SQLitePath != "/data/readings.db" {
			t.Errorf("SQLitePath = %q", got.SQLitePath)
		}
		if got.SQLiteDSN != "file::memory:?cache=shared" {
			t.Errorf("SQLiteDSN = %q", got.SQLiteDSN)
		}
		if got.SQLiteMaxOpenConns != 4 || got.SQLiteMaxIdleConns != 2 {
			t.Errorf("pool = %d/%d, want 4/2", got.SQLiteMaxOpenConns, got.SQLiteMaxIdleConns)
		}
		if got.SQLiteConnMaxLifetime != time.Minute {
			t.Errorf("SQLiteConnMaxLifetime = %v, want 1m", got.SQLiteConnMaxLifetime)
		}
		if !got.SQLiteLogStatements {
			t.Error("SQLiteLogStatements = false, want true")
		}
	})

	invalid := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unsupported driver", key: "DB_DRIVER", val: "postgres"},
		{name: "non-integer max open", key: "DB_MAX_OPEN_CONNS", val: "many"},
		{name: "non-integer max idle", key: "DB_MAX_IDLE_CONNS", val: "x"},
		{name: "bad lifetime", key: "DB_CONN_MAX_LIFETIME", val: "forever"},
		{name: "negative lifetime", key: "DB_CONN_MAX_LIFETIME", val: "-1s"},
		{name: "bad log flag", key: "DB_LOG_SQL", val: "sometimes"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatalf("LoadFromEnv() with %s=%q error = nil, want non-nil", tt.key, tt.val)
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err.Error(), tt.key)
			}
		})
	}
}

func TestLoadFromEnv_MQTT(t *testing.T) {
	t.Run("broker enables mqtt", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("MQTT_BROKER", " broker.local ")
		t.Setenv("MQTT_PORT", "1884")
		t.Setenv("MQTT_CLIENT_ID", "validator-1")
		t.Setenv("MQTT_TOPIC", "plant/+/readings")

		got, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v, want nil", err)
		}
		if !got.MQTTEnabled() {
			t.Fatal("MQTTEnabled() = false, want true")
		}
		if got.MQTTBroker != "broker.local" || got.MQTTPort != 1884 {
			t.Errorf("broker = %s:%d, want broker.local:1884", got.MQTTBroker, got.MQTTPort)
		}
		if got.MQTTClientID != "validator-1" {
			t.Errorf("MQTTClientID = %q, want validator-1", got.MQTTClientID)
		}
		if got.MQTTTopic != "plant/+/readings" {
			t.Errorf("MQTTTopic = %q", got.MQTTTopic)
		}
	})

	for _, port := range []string{"abc", "0", "70000"} {
		t.Run("invalid port "+port, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MQTT_PORT", port)
			if _, err := LoadFromEnv(); err == nil {
				t.Fatalf("LoadFromEnv() with MQTT_PORT=%q error = nil, want non-nil", port)
			}
		})
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
