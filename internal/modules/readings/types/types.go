package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by the repository when no row has the requested id.
var ErrNotFound = errors.New("reading not found")

type Status string

const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Valid reports whether s is one of ok, warn or fail.
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusWarn, StatusFail:
		return true
	default:
		return false
	}
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("status must be one of ok, warn, fail; got %q", s)
	}
	return st, nil
}

type Reading struct {
	ID           int64     `json:"id"`
	SensorID     string    `json:"sensor_id"`
	Timestamp    time.Time `json:"ts"`
	TemperatureC float64   `json:"temperature_c"`
	HumidityPct  float64   `json:"humidity_pct"`
	Status       Status    `json:"status"`
}

// Candidate is a reading that passed field checks and awaits the domain rules.
// A nil Timestamp means the database assigns the insert time.
type Candidate struct {
	SensorID     string
	Timestamp    *time.Time
	TemperatureC float64
	HumidityPct  float64
	Status       Status
}

// Filter selects readings for a list query. Nil fields are not applied.
type Filter struct {
	SensorID *string
	Status   *Status
	MinTemp  *float64
	MaxTemp  *float64
	Offset   int
	Limit    int
}

// Summary aggregates the whole table. Aggregates are nil when it is empty.
type Summary struct {
	TotalCount      int64    `json:"total_count"`
	AvgTemperatureC *float64 `json:"avg_temperature_c"`
	MinTemperatureC *float64 `json:"min_temperature_c"`
	MaxTemperatureC *float64 `json:"max_temperature_c"`
	AvgHumidityPct  *float64 `json:"avg_humidity_pct"`
	MinHumidityPct  *float64 `json:"min_humidity_pct"`
	MaxHumidityPct  *float64 `json:"max_humidity_pct"`
}
