package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/config"
	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

// handlerTimeout bounds one message handler call, storage included.
const handlerTimeout = 10 * time.Second

// MessageHandler processes one decoded reading received on topic.
type MessageHandler func(ctx context.Context, topic string, r telemetry.Reading) error

// MQTTSubscriber is implemented by anything that can deliver readings to a handler.
type MQTTSubscriber interface {
	SetMessageHandler(handler MessageHandler)
}

type Subscriber struct {
	*conn
	topic      string
	subscribed atomic.Bool
	handler    atomic.Pointer[MessageHandler]

	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) *Subscriber {
	s := &Subscriber{conn: newConn(logger), topic: cfg.MQTTTopic}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	opts := s.clientOptions(cfg, cfg.MQTTClientID, func() {
		// Clean sessions drop subscriptions, so restore them after a reconnect.
		if s.subscribed.Load() {
			if err := s.subscribe(); err != nil {
				s.logger.Error("mqtt resubscribe failed", "topic", s.topic, "error", err)
			}
		}
	})
	s.client = mqtt.NewClient(opts)
	return s
}

// SetMessageHandler sets the handler for decoded readings. Set it before Connect.
func (s *Subscriber) SetMessageHandler(handler MessageHandler) {
	s.handler.Store(&handler)
}

// Connect establishes the connection and subscribes to the configured topic.
func (s *Subscriber) Connect(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		return err
	}
	if err := s.subscribe(); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("subscribe: %w", err)
	}
	s.subscribed.Store(true)
	return nil
}

func (s *Subscriber) subscribe() error {
	if !s.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	token := s.client.Subscribe(s.topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if err := waitToken(token, "subscribe to "+s.topic); err != nil {
		return err
	}
	s.logger.Info("subscribed to mqtt topic", "topic", s.topic, "qos", qos)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	var r telemetry.Reading
	if err := json.Unmarshal(payload, &r); err != nil {
		s.logger.Warn("failed to parse reading message",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	h := s.handler.Load()
	if h == nil {
		s.logger.Warn("no handler for mqtt reading", "topic", topic)
		return
	}

	ctx, cancel := context.WithTimeout(s.baseCtx, handlerTimeout)
	defer cancel()
	if err := (*h)(ctx, topic, r); err != nil {
		s.logger.Error("message handler failed",
			"topic", topic,
			"sensor_id", r.SensorID,
			"error", err,
		)
	}
}

// Disconnect unsubscribes and closes the connection. Safe to call more than once.
func (s *Subscriber) Disconnect() {
	s.cancel()
	s.stop(func() {
		if err := waitToken(s.client.Unsubscribe(s.topic), "unsubscribe"); err != nil {
			s.logger.Warn("mqtt unsubscribe failed", "topic", s.topic, "error", err)
		}
	})
	s.logger.Info("mqtt subscriber disconnected")
}
