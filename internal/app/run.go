package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/config"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/db"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/httpapi"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/migrate"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/mqtt"
)

const mqttConnectTimeout = 5 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"sqliteLogStatements", cfg.SQLiteLogStatements,
		"mqttEnabled", cfg.MQTTEnabled(),
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	applied, err := migrate.Run(ctx, dbConn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("database ready", "migrationsApplied", applied)

	mux := httpapi.NewMux(dbConn)

	// The handler must be attached before Connect: the broker can deliver
	// right after SUBACK.
	var subscriber *mqtt.Subscriber
	if cfg.MQTTEnabled() {
		subscriber = mqtt.NewSubscriber(cfg, slog.Default())
		readings.RegisterFeature(mux, dbConn, subscriber, slog.Default())

		connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
		err := subscriber.Connect(connectCtx)
		cancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	} else {
		readings.RegisterFeature(mux, dbConn, nil, slog.Default())
		slog.Info("mqtt disabled (MQTT_BROKER not set)")
	}

	srv := httpapi.NewServer(cfg, mux)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		if subscriber != nil {
			slog.Info("mqtt disconnecting")
			subscriber.Disconnect()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		slog.Info("http shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
