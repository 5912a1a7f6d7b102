package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/config"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

// Publisher sends readings to sensors/{sensor_id}/readings.
type Publisher struct {
	*conn
}

func NewPublisher(cfg config.Config, logger *slog.Logger) *Publisher {
	p := &Publisher{conn: newConn(logger)}
	p.client = mqtt.NewClient(p.clientOptions(cfg, cfg.MQTTClientID+"-pub", nil))
	return p
}

// Connect waits for the broker connection, honouring ctx.
func (p *Publisher) Connect(ctx context.Context) error {
	return p.connect(ctx)
}

// PublishReading publishes r on its sensor's topic with QoS 1.
func (p *Publisher) PublishReading(r telemetry.Reading) error {
	if !p.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	if r.SensorID == "" {
		return fmt.Errorf("publish reading: empty sensor_id")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	topic := ReadingTopic(r.SensorID)
	if err := waitToken(p.client.Publish(topic, qos, false, data), "publish to "+topic); err != nil {
		p.logger.Error("failed to publish reading", "topic", topic, "error", err)
		return err
	}
	p.logger.Debug("published reading", "topic", topic, "sensor_id", r.SensorID)
	return nil
}

// Disconnect closes the connection. Safe to call more than once.
func (p *Publisher) Disconnect() {
	p.stop(nil)
	p.logger.Info("mqtt publisher disconnected")
}
