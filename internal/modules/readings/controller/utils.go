package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/types"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/validation"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

const (
	defaultLimit = 50
	maxLimit     = 200
	maxBodyBytes = 1 << 20
)

var errInvertedRange = errors.New("min_temp is greater than max_temp")

// decodeReading reads the ingest body. Decode failures come back as
// validation.FieldErrors: a field with the wrong JSON type is reported next to
// the presence and range errors of the remaining fields.
func decodeReading(w http.ResponseWriter, r *http.Request) (telemetry.Reading, error) {
	var payload telemetry.Reading
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&raw); err != nil {
		return payload, bodyError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return payload, validation.FieldErrors{{Field: "body", Message: "unexpected data after JSON object"}}
	}
	if raw == nil {
		return payload, validation.FieldErrors{{Field: "body", Message: "expected object, got null"}}
	}

	fields := []struct {
		name string
		dst  any
	}{
		{"sensor_id", &payload.SensorID},
		{"ts", &payload.Timestamp},
		{"temperature_c", &payload.TemperatureC},
		{"humidity_pct", &payload.HumidityPct},
		{"status", &payload.Status},
	}
	typeErrs := map[string]validation.FieldError{}
	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			typeErrs[f.name] = validation.FieldError{Field: f.name, Message: fieldDecodeMessage(err)}
		}
	}
	if len(typeErrs) == 0 {
		return payload, nil
	}

	var checkErrs validation.FieldErrors
	if _, err := validation.CheckFields(payload); err != nil {
		errors.As(err, &checkErrs)
	}
	var errs validation.FieldErrors
	for _, f := range fields {
		if fe, ok := typeErrs[f.name]; ok {
			errs = append(errs, fe)
			continue
		}
		for _, fe := range checkErrs {
			if fe.Field == f.name {
				errs = append(errs, fe)
			}
		}
	}
	return payload, errs
}

func bodyError(err error) validation.FieldErrors {
	var (
		typeErr *json.UnmarshalTypeError
		sizeErr *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return validation.FieldErrors{{Field: "body", Message: "field required"}}
	case errors.As(err, &sizeErr):
		return validation.FieldErrors{{Field: "body", Message: fmt.Sprintf("body exceeds %d bytes", sizeErr.Limit)}}
	case errors.As(err, &typeErr):
		return validation.FieldErrors{{Field: "body", Message: fmt.Sprintf("expected object, got %s", typeErr.Value)}}
	default:
		return validation.FieldErrors{{Field: "body", Message: "invalid JSON: " + err.Error()}}
	}
}

func fieldDecodeMessage(err error) string {
	var (
		typeErr *json.UnmarshalTypeError
		tsErr   *telemetry.TimestampError
	)
	switch {
	case errors.As(err, &tsErr):
		return tsErr.Error()
	case errors.As(err, &typeErr):
		return fmt.Sprintf("expected %s, got %s", jsonKind(typeErr.Type), typeErr.Value)
	default:
		return err.Error()
	}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}

// parseListQuery builds a filter from offset, limit, sensor_id, status,
// min_temp and max_temp. A parameter that is present applies even when zero.
// Limits above maxLimit are capped rather than rejected.
func parseListQuery(r *http.Request) (types.Filter, error) {
	q := r.URL.Query()
	f := types.Filter{Limit: defaultLimit}
	var errs validation.FieldErrors

	if q.Has("offset") {
		n, err := strconv.Atoi(q.Get("offset"))
		switch {
		case err != nil:
			errs = append(errs, validation.FieldError{Field: "offset", Message: "must be an integer"})
		case n < 0:
			errs = append(errs, validation.FieldError{Field: "offset", Message: "must be >= 0"})
		default:
			f.Offset = n
		}
	}

	if q.Has("limit") {
		n, err := strconv.Atoi(q.Get("limit"))
		switch {
		case err != nil:
			errs = append(errs, validation.FieldError{Field: "limit", Message: "must be an integer"})
		case n < 1:
			errs = append(errs, validation.FieldError{Field: "limit", Message: "must be >= 1"})
		default:
			f.Limit = min(n, maxLimit)
		}
	}

	if q.Has("sensor_id") {
		s := q.Get("sensor_id")
		f.SensorID = &s
	}

	if q.Has("status") {
		st, err := types.ParseStatus(q.Get("status"))
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "status", Message: err.Error()})
		} else {
			f.Status = &st
		}
	}

	f.MinTemp = parseFloatParam(q.Get("min_temp"), q.Has("min_temp"), "min_temp", &errs)
	f.MaxTemp = parseFloatParam(q.Get("max_temp"), q.Has("max_temp"), "max_temp", &errs)

	if f.MinTemp != nil && f.MaxTemp != nil && *f.MinTemp > *f.MaxTemp {
		return types.Filter{}, errInvertedRange
	}
	if len(errs) > 0 {
		return types.Filter{}, errs
	}
	return f, nil
}

func parseFloatParam(raw string, present bool, field string, errs *validation.FieldErrors) *float64 {
	if !present {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*errs = append(*errs, validation.FieldError{Field: field, Message: "must be a number"})
		return nil
	}
	return &v
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, validation.FieldErrors{{Field: "id", Message: "must be an integer"}}
	}
	return id, nil
}
