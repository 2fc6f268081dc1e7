package sensor

import (
	"fmt"
	"time"

	"github.com/ericogr/accel-logger/pkg/config"
)

// Type identifies the kind of sensor an event came from.
type Type int

const (
	TypeAccelerometer Type = iota + 1
	TypeGyroscope
	TypeMagnetometer
)

func (t Type) String() string {
	switch t {
	case TypeAccelerometer:
		return "accelerometer"
	case TypeGyroscope:
		return "gyroscope"
	case TypeMagnetometer:
		return "magnetometer"
	}
	return "unknown"
}

// Event is one callback from a sensor: a type and its three axis values.
type Event struct {
	Type      Type       `json:"type"`
	Values    [3]float64 `json:"values"`
	Timestamp time.Time  `json:"timestamp"`
}

// Sample is an accelerometer reading in m/s².
type Sample struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Timestamp time.Time `json:"timestamp"`
}

type Sensor interface {
	Read() (Event, error)
	Close() error
}

// New opens the sensor selected by cfg.SensorType.
func New(cfg config.Config) (Sensor, error) {
	switch cfg.SensorType {
	case config.SensorReal:
		return NewADXL345Sensor(cfg)
	case config.SensorSimulation:
		return NewFakeSensor(cfg)
	}
	return nil, fmt.Errorf("unknown sensor type %q", cfg.SensorType)
}
