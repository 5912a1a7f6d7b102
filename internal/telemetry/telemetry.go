package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Reading is a sensor message as it arrives on POST /ingest or over MQTT.
// Pointer fields stay nil when the key is absent so missing values can be
// told apart from zero.
type Reading struct {
	SensorID     string     `json:"sensor_id"`
	Timestamp    *Timestamp `json:"ts,omitempty"`
	TemperatureC *float64   `json:"temperature_c"`
	HumidityPct  *float64   `json:"humidity_pct"`
	Status       *string    `json:"status"`
}

// Timestamp accepts RFC 3339 with an offset or a naive ISO-8601 date-time,
// which is taken to be UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// TimestampError reports a ts value that matches none of the accepted layouts.
type TimestampError struct {
	Value string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("invalid datetime %q (expected ISO-8601)", e.Value)
}

// ParseTimestamp parses s with the same rules as Timestamp.UnmarshalJSON.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &TimestampError{Value: s}
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &TimestampError{Value: string(b)}
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// At returns a Timestamp pointer for building payloads.
func At(t time.Time) *Timestamp {
	return &Timestamp{Time: t.UTC()}
}
