package service

import (
	"context"
	"errors"
	"strings"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/validation"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/mqtt"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

// registerMQTTHandler stores readings arriving on sensors/{sensor_id}/readings
// through the same path as POST /ingest. Rejections are logged and dropped.
func registerMQTTHandler(subscriber mqtt.MQTTSubscriber, s *Service) {
	subscriber.SetMessageHandler(func(ctx context.Context, topic string, r telemetry.Reading) error {
		if r.SensorID == "" {
			r.SensorID = sensorIDFromTopic(topic)
		}

		id, err := s.Ingest(ctx, r)
		var (
			fieldErrs validation.FieldErrors
			violation *validation.RuleViolation
		)
		switch {
		case errors.As(err, &fieldErrs):
			s.logger.Warn("mqtt reading rejected", "topic", topic, "sensor_id", r.SensorID, "fields", []validation.FieldError(fieldErrs))
			return nil
		case errors.As(err, &violation):
			s.logger.Warn("mqtt reading rejected", "topic", topic, "sensor_id", r.SensorID, "reason", violation.Reason)
			return nil
		case err != nil:
			return err
		}

		s.logger.Debug("mqtt reading stored", "topic", topic, "sensor_id", r.SensorID, "id", id)
		return nil
	})
}

// sensorIDFromTopic returns the middle segment of sensors/{id}/readings, or "".
func sensorIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "sensors" || parts[2] != "readings" {
		return ""
	}
	return parts[1]
}
