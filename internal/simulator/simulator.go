package simulator

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

type Options struct {
	Count    int
	Interval time.Duration
}

// Stats counts outcomes of a run.
type Stats struct {
	Sent     int
	Accepted int
	Rejected int
	Failed   int
}

// Run sends opts.Count readings from gen to sink, opts.Interval apart. Send
// failures are logged and counted, never retried. It stops early when ctx ends.
func Run(ctx context.Context, gen *Generator, sink Sink, opts Options, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var stats Stats

	var tick <-chan time.Time
	if opts.Interval > 0 {
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for i := 0; i < opts.Count; i++ {
		if i > 0 && tick != nil {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-tick:
			}
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		r := gen.Next()
		stats.Sent++
		id, err := sink.Send(ctx, r)
		switch {
		case errors.Is(err, ErrRejected):
			stats.Rejected++
			logger.Info("reading rejected", "sensor_id", r.SensorID, "error", err)
		case err != nil:
			stats.Failed++
			logger.Warn("send failed", "sensor_id", r.SensorID, "error", err)
		default:
			stats.Accepted++
			logger.Info("reading sent", "sensor_id", r.SensorID, "id", id,
				"temperature_c", *r.TemperatureC, "humidity_pct", *r.HumidityPct, "status", *r.Status)
		}
	}
	return stats, nil
}
