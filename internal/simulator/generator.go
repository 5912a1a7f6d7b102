// Package simulator produces synthetic sensor readings and pushes them to the
// service over HTTP or MQTT.
package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/SudeepS234/Iot-Stream-Validation/internal/telemetry"
)

var DefaultSensors = []string{"HX-001", "HX-002", "T-ROOM-01", "T-ROOM-02", "EXT-01"}

const (
	minTemp = 18.0
	maxTemp = 95.0
	minHum  = 20.0
	maxHum  = 98.0

	// Above this temperature the status flips to warn or fail.
	alarmTemp = 85.0
)

// Generator draws random readings. It is not safe for concurrent use.
type Generator struct {
	rnd     *rand.Rand
	sensors []string
	now     func() time.Time
}

func NewGenerator(seed int64, sensors []string) *Generator {
	if len(sensors) == 0 {
		sensors = DefaultSensors
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed)), sensors: sensors, now: time.Now}
}

// Next returns one reading for a random sensor, stamped with the current time.
func (g *Generator) Next() telemetry.Reading {
	sensor := g.sensors[g.rnd.Intn(len(g.sensors))]
	temp := round2(minTemp + g.rnd.Float64()*(maxTemp-minTemp))
	hum := round2(minHum + g.rnd.Float64()*(maxHum-minHum))
	status := "ok"
	if temp > alarmTemp {
		status = []string{"warn", "fail"}[g.rnd.Intn(2)]
	}
	return telemetry.Reading{
		SensorID:     sensor,
		Timestamp:    telemetry.At(g.now()),
		TemperatureC: &temp,
		HumidityPct:  &hum,
		Status:       &status,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
