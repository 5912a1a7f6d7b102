package simulator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

// ErrRejected marks a reading the service refused. The wrapping error carries
// the service message.
var ErrRejected = errors.New("reading rejected")

// Sink delivers a reading and returns the stored id when the transport reports one.
type Sink interface {
	Send(ctx context.Context, r telemetry.Reading) (int64, error)
}

type ingestResult struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type ingestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// HTTPSink posts readings to {baseURL}/ingest.
type HTTPSink struct {
	client *resty.Client
}

func NewHTTPSink(baseURL string, timeout time.Duration) *HTTPSink {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &HTTPSink{client: client}
}

func (s *HTTPSink) Send(ctx context.Context, r telemetry.Reading) (int64, error) {
	var (
		result  ingestResult
		failure ingestError
	)
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(r).
		SetResult(&result).
		SetError(&failure).
		Post("/ingest")
	if err != nil {
		return 0, fmt.Errorf("post ingest: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusCreated:
		return result.ID, nil
	case http.StatusUnprocessableEntity:
		return 0, fmt.Errorf("%w: %s", ErrRejected, failure.Message)
	default:
		return 0, fmt.Errorf("post ingest: unexpected status %d: %s", resp.StatusCode(), resp.String())
	}
}

// Publisher is the subset of the MQTT publisher the sink needs.
type Publisher interface {
	PublishReading(r telemetry.Reading) error
}

// MQTTSink publishes readings; the broker does not report ids or rejections.
type MQTTSink struct {
	publisher Publisher
}

func NewMQTTSink(p Publisher) *MQTTSink {
	return &MQTTSink{publisher: p}
}

func (s *MQTTSink) Send(ctx context.Context, r telemetry.Reading) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return 0, s.publisher.PublishReading(r)
}
