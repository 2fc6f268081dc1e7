package console

import (
	"fmt"
	"time"

	"github.com/ericogr/accel-logger/pkg/output"
	"github.com/ericogr/accel-logger/pkg/sensor"
)

type ConsoleOutput struct{}

func NewConsole() output.Output { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(samples []sensor.Sample) error {
	for _, s := range samples {
		fmt.Printf("%s x=%.6f y=%.6f z=%.6f\n", s.Timestamp.Format(time.RFC3339), s.X, s.Y, s.Z)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
