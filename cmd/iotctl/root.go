package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/config"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/db"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/logging"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/migrate"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/mqtt"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/simulator"
)

const appName = "iotctl"

var version = "dev"

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Operator tool for the IoT stream validation service",
		Long: `iotctl applies database migrations and drives synthetic sensor traffic
at a running service. Settings come from the same environment variables as the
server (SQLITE_PATH, MQTT_BROKER, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			if verbose {
				cfg.LogLevel = slog.LevelDebug
			}
			slog.SetDefault(logging.New(cfg, version, appName))
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")

	root.AddCommand(newMigrateCmd(), newSimulateCmd())
	return root
}

type configKey struct{}

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(ctx context.Context) config.Config {
	cfg, _ := ctx.Value(configKey{}).(config.Config)
	return cfg
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations to SQLITE_PATH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFrom(cmd.Context())
			conn, err := db.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(conn); err != nil {
					slog.Error("db close", "error", err)
				}
			}()

			n, err := migrate.Run(cmd.Context(), conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", n, cfg.SQLitePath)
			return nil
		},
	}
}

type simulateFlags struct {
	url       string
	count     int
	interval  time.Duration
	transport string
	seed      int64
	sensors   []string
	timeout   time.Duration
}

func newSimulateCmd() *cobra.Command {
	var f simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Send synthetic sensor readings to the service",
		Long: `Send random readings for a fixed set of sensors.

Examples:
  iotctl simulate
  iotctl simulate --count 100 --interval 100ms
  MQTT_BROKER=localhost iotctl simulate --transport mqtt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.url, "url", "http://127.0.0.1:8000", "Service base URL (http transport)")
	cmd.Flags().IntVarP(&f.count, "count", "n", 25, "Number of readings to send")
	cmd.Flags().DurationVar(&f.interval, "interval", 500*time.Millisecond, "Delay between readings")
	cmd.Flags().StringVar(&f.transport, "transport", "http", "Transport: http or mqtt")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed (0 uses the current time)")
	cmd.Flags().StringSliceVar(&f.sensors, "sensors", simulator.DefaultSensors, "Sensor ids to draw from")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 5*time.Second, "Per-request timeout (http transport)")
	return cmd
}

func runSimulate(cmd *cobra.Command, f simulateFlags) error {
	if f.count < 1 {
		return fmt.Errorf("--count must be >= 1")
	}
	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctx := cmd.Context()
	cfg := configFrom(ctx)

	var sink simulator.Sink
	switch f.transport {
	case "http":
		sink = simulator.NewHTTPSink(f.url, f.timeout)
	case "mqtt":
		if !cfg.MQTTEnabled() {
			return errors.New("mqtt transport needs MQTT_BROKER")
		}
		pub := mqtt.NewPublisher(cfg, slog.Default())
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := pub.Connect(connectCtx)
		cancel()
		if err != nil {
			return err
		}
		defer pub.Disconnect()
		sink = simulator.NewMQTTSink(pub)
	default:
		return fmt.Errorf("invalid --transport %q (allowed: http, mqtt)", f.transport)
	}

	slog.Info("simulation starting", "transport", f.transport, "count", f.count, "interval", f.interval, "seed", seed)
	stats, err := simulator.Run(ctx, simulator.NewGenerator(seed, f.sensors), sink,
		simulator.Options{Count: f.count, Interval: f.interval}, slog.Default())
	fmt.Fprintf(cmd.OutOrStdout(), "sent=%d accepted=%d rejected=%d failed=%d\n",
		stats.Sent, stats.Accepted, stats.Rejected, stats.Failed)
	return err
}
