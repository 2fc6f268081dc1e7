package sensor

import (
	"context"
	"time"
)

type Logger interface {
	Printf(format string, v ...any)
}

// Listener polls a Sensor and forwards every event to a handler.
type Listener struct {
	sensor   Sensor
	interval time.Duration
	logger   Logger
}

func NewListener(s Sensor, interval time.Duration, logger Logger) *Listener {
	return &Listener{sensor: s, interval: interval, logger: logger}
}

// Run delivers events until ctx is done. Read errors are logged and polling continues.
func (l *Listener) Run(ctx context.Context, handler func(Event)) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ev, err := l.sensor.Read()
			if err != nil {
				l.logger.Printf("sensor read error: %v", err)
				continue
			}
			handler(ev)
		}
	}
}
