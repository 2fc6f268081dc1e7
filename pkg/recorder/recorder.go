// Package recorder turns accelerometer events into stored rows and live state.
package recorder

import (
	"time"

	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/ericogr/accel-logger/pkg/store"
)

type Sink interface {
	Enqueue(row *store.AccelerometerData) bool
}

type StateUpdater interface {
	Update(sample sensor.Sample)
}

type Logger interface {
	Printf(format string, v ...any)
}

type Recorder struct {
	sink   Sink
	state  StateUpdater
	logger Logger
	now    func() time.Time
}

func New(sink Sink, state StateUpdater, logger Logger) *Recorder {
	return &Recorder{sink: sink, state: state, logger: logger, now: time.Now}
}

// OnEvent handles one sensor callback. Only accelerometer events are recorded,
// each as exactly one row stamped with the time of the callback.
func (r *Recorder) OnEvent(ev sensor.Event) {
	if ev.Type != sensor.TypeAccelerometer {
		return
	}
	sample := sensor.Sample{
		X:         ev.Values[0],
		Y:         ev.Values[1],
		Z:         ev.Values[2],
		Timestamp: r.now(),
	}
	r.state.Update(sample)
	if !r.sink.Enqueue(store.FromSample(sample)) {
		r.logger.Printf("writer stopped, dropping sample at %d", sample.Timestamp.UnixMilli())
	}
}
