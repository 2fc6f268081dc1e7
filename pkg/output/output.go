package output

import "github.com/ericogr/accel-logger/pkg/sensor"

type Output interface {
	Publish([]sensor.Sample) error
	Close() error
}

// helper constructors are in subpackages
