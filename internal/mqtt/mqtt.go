// Package mqtt wraps the paho client for the readings topic tree
// sensors/{sensor_id}/readings: a Subscriber feeding the ingest path and a
// Publisher used by the load generator.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/config"
)

const (
	qos            = byte(1)
	tokenTimeout   = 5 * time.Second
	connectPolling = 200 * time.Millisecond
)

var errStopped = errors.New("mqtt client stopped")

// ReadingTopic returns the topic a sensor publishes its readings on.
func ReadingTopic(sensorID string) string {
	return fmt.Sprintf("sensors/%s/readings", sensorID)
}

// conn tracks connection state shared by Subscriber and Publisher.
type conn struct {
	client    mqtt.Client
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newConn(logger *slog.Logger) *conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &conn{logger: logger, stopCh: make(chan struct{})}
}

// clientOptions builds the paho options. onConnect runs after every
// successful (re)connect.
func (c *conn) clientOptions(cfg config.Config, clientID string, onConnect func()) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(clientID)

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.setConnected(true)
		c.logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort, "client_id", clientID)
		if onConnect != nil {
			onConnect()
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.setConnected(false)
		c.logger.Warn("mqtt connection lost", "error", err)
	})
	return opts
}

// connect waits for the initial connection while honouring ctx and stop.
func (c *conn) connect(ctx context.Context) error {
	select {
	case <-c.stopCh:
		return errStopped
	default:
	}

	if c.IsConnected() {
		return nil
	}

	token := c.client.Connect()
	for {
		if token.WaitTimeout(connectPolling) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			c.client.Disconnect(0)
			return ctx.Err()
		case <-c.stopCh:
			c.client.Disconnect(0)
			return errStopped
		default:
		}
	}
}

// IsConnected returns whether the client is connected.
func (c *conn) IsConnected() bool {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()
	return connected && c.client != nil && c.client.IsConnected()
}

func (c *conn) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// stop closes the connection. Idempotent.
func (c *conn) stop(before func()) {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if before != nil && c.IsConnected() {
		before()
	}
	if c.client != nil {
		c.client.Disconnect(250)
	}
	c.setConnected(false)
}

func waitToken(t mqtt.Token, what string) error {
	if !t.WaitTimeout(tokenTimeout) {
		return fmt.Errorf("%s: timeout", what)
	}
	if err := t.Error(); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
