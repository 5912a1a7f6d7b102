package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/app"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/config"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/logging"
)

const appName = "iot-stream-validator"

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: config: %v\n", appName, err)
		return 2
	}
	slog.SetDefault(logging.New(cfg, version, appName))

	mqttTopic := ""
	if cfg.MQTTEnabled() {
		mqttTopic = cfg.MQTTTopic
	}
	slog.Info("service starting",
		"version", version,
		"env", cfg.AppEnv,
		"http_addr", cfg.HTTPAddr,
		"sqlite_path", cfg.SQLitePath,
		"mqtt_topic", mqttTopic,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("service stopped with error", "error", err)
		return 1
	}
	slog.Info("service stopped")
	return 0
}
