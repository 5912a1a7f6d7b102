// Package validation turns an ingest payload into a types.Candidate and runs
// the ordered domain rules over it.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/types"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

const (
	MaxSensorIDLen = 64
	MinTemperature = -50.0
	MaxTemperature = 150.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0

	msgRequired = "field required"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors lists every field that failed its check.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RuleViolation is returned when a structurally valid reading breaks a domain rule.
type RuleViolation struct {
	Reason string
}

func (v *RuleViolation) Error() string {
	return "Invalid reading: " + v.Reason
}

// CheckFields verifies presence and ranges of every field and collects all
// failures before returning.
func CheckFields(r telemetry.Reading) (types.Candidate, error) {
	var errs FieldErrors
	var c types.Candidate

	switch n := utf8.RuneCountInString(r.SensorID); {
	case n == 0:
		errs = append(errs, FieldError{Field: "sensor_id", Message: msgRequired})
	case n > MaxSensorIDLen:
		errs = append(errs, FieldError{Field: "sensor_id", Message: fmt.Sprintf("must be at most %d characters", MaxSensorIDLen)})
	default:
		c.SensorID = r.SensorID
	}

	if r.Timestamp != nil {
		ts := r.Timestamp.UTC()
		c.Timestamp = &ts
	}

	switch {
	case r.TemperatureC == nil:
		errs = append(errs, FieldError{Field: "temperature_c", Message: msgRequired})
	case *r.TemperatureC < MinTemperature || *r.TemperatureC > MaxTemperature:
		errs = append(errs, FieldError{Field: "temperature_c", Message: fmt.Sprintf("must be between %g and %g", MinTemperature, MaxTemperature)})
	default:
		c.TemperatureC = *r.TemperatureC
	}

	switch {
	case r.HumidityPct == nil:
		errs = append(errs, FieldError{Field: "humidity_pct", Message: msgRequired})
	case *r.HumidityPct < MinHumidity || *r.HumidityPct > MaxHumidity:
		errs = append(errs, FieldError{Field: "humidity_pct", Message: fmt.Sprintf("must be between %g and %g", MinHumidity, MaxHumidity)})
	default:
		c.HumidityPct = *r.HumidityPct
	}

	if r.Status == nil {
		errs = append(errs, FieldError{Field: "status", Message: msgRequired})
	} else if st, err := types.ParseStatus(*r.Status); err != nil {
		errs = append(errs, FieldError{Field: "status", Message: err.Error()})
	} else {
		c.Status = st
	}

	if len(errs) > 0 {
		return types.Candidate{}, errs
	}
	return c, nil
}
