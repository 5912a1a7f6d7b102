package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/repository"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/modules/readings/validation"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/mqtt"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

type Service struct {
	repository repository.ReadingsRepository
	logger     *slog.Logger
}

func NewService(repository repository.ReadingsRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repository: repository, logger: logger}
}

// Ingest checks the payload fields, applies the domain rules and stores the
// reading. It returns validation.FieldErrors or *validation.RuleViolation for
// rejected input and a wrapped storage error otherwise.
func (s *Service) Ingest(ctx context.Context, r telemetry.Reading) (int64, error) {
	c, err := validation.CheckFields(r)
	if err != nil {
		return 0, err
	}
	if ok, reason := validation.Validate(c); !ok {
		return 0, &validation.RuleViolation{Reason: reason}
	}
	id, err := s.repository.InsertReading(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("ingest %s: %w", c.SensorID, err)
	}
	s.logger.Debug("reading stored", "id", id, "sensor_id", c.SensorID, "status", c.Status)
	return id, nil
}

// Register attaches the MQTT ingest handler to subscriber.
func (s *Service) Register(subscriber mqtt.MQTTSubscriber) {
	registerMQTTHandler(subscriber, s)
}
