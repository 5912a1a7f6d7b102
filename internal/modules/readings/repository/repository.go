package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/types"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/list-readings.sql
var listReadingsSQL string

//go:embed sql/get-reading.sql
var getReadingSQL string

//go:embed sql/delete-reading.sql
var deleteReadingSQL string

//go:embed sql/get-summary.sql
var getSummarySQL string

type ReadingsRepository interface {
	InsertReading(ctx context.Context, c types.Candidate) (int64, error)
	ListReadings(ctx context.Context, f types.Filter) ([]types.Reading, error)
	GetReading(ctx context.Context, id int64) (types.Reading, error)
	DeleteReading(ctx context.Context, id int64) error
	Summary(ctx context.Context) (types.Summary, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ReadingsRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertReading(ctx context.Context, c types.Candidate) (int64, error) {
	var ts any
	if c.Timestamp != nil {
		ts = c.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	res, err := r.db.ExecContext(ctx, insertReadingSQL, c.SensorID, ts, c.TemperatureC, c.HumidityPct, string(c.Status))
	if err != nil {
		return 0, fmt.Errorf("insert reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert reading: last insert id: %w", err)
	}
	return id, nil
}

func (r *repositoryImpl) ListReadings(ctx context.Context, f types.Filter) ([]types.Reading, error) {
	var status any
	if f.Status != nil {
		status = string(*f.Status)
	}
	rows, err := r.db.QueryContext(ctx, listReadingsSQL,
		nullable(f.SensorID),
		status,
		nullable(f.MinTemp),
		nullable(f.MaxTemp),
		f.Limit,
		f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()

	out := make([]types.Reading, 0, f.Limit)
	for rows.Next() {
		rec, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	return out, nil
}

func (r *repositoryImpl) GetReading(ctx context.Context, id int64) (types.Reading, error) {
	rec, err := scanReading(r.db.QueryRowContext(ctx, getReadingSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Reading{}, types.ErrNotFound
	}
	if err != nil {
		return types.Reading{}, fmt.Errorf("get reading %d: %w", id, err)
	}
	return rec, nil
}

func (r *repositoryImpl) DeleteReading(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteReadingSQL, id)
	if err != nil {
		return fmt.Errorf("delete reading %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete reading %d: rows affected: %w", id, err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *repositoryImpl) Summary(ctx context.Context) (types.Summary, error) {
	var (
		s                types.Summary
		avgT, minT, maxT sql.NullFloat64
		avgH, minH, maxH sql.NullFloat64
	)
	err := r.db.QueryRowContext(ctx, getSummarySQL).Scan(&s.TotalCount, &avgT, &minT, &maxT, &avgH, &minH, &maxH)
	if err != nil {
		return types.Summary{}, fmt.Errorf("summary: %w", err)
	}
	s.AvgTemperatureC = round2(avgT)
	s.MinTemperatureC = floatPtr(minT)
	s.MaxTemperatureC = floatPtr(maxT)
	s.AvgHumidityPct = round2(avgH)
	s.MinHumidityPct = floatPtr(minH)
	s.MaxHumidityPct = floatPtr(maxH)
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (types.Reading, error) {
	var (
		rec    types.Reading
		ts     string
		status string
	)
	if err := row.Scan(&rec.ID, &rec.SensorID, &ts, &rec.TemperatureC, &rec.HumidityPct, &status); err != nil {
		return types.Reading{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return types.Reading{}, fmt.Errorf("parse timestamp %q of reading %d: %w", ts, rec.ID, err)
	}
	rec.Timestamp = t.UTC()
	rec.Status = types.Status(status)
	return rec, nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func round2(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := math.Round(v.Float64*100) / 100
	return &f
}
