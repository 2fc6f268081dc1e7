package sensor

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ericogr/accel-logger/pkg/config"
)

// FakeSensor simulates a device lying flat: gravity on Z plus a little noise.
type FakeSensor struct {
	cal config.CalibrationConfig
	rnd *rand.Rand
	mu  sync.Mutex
}

func NewFakeSensor(cfg config.Config) (Sensor, error) {
	return &FakeSensor{cal: cfg.Calibration, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}, nil
}

func (f *FakeSensor) Read() (Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	noise := func() float64 { return (f.rnd.Float64() - 0.5) * 0.4 }
	values := [3]float64{noise(), noise(), standardGrav + noise()}
	return Event{
		Type:      TypeAccelerometer,
		Values:    calibrate(values, f.cal),
		Timestamp: time.Now(),
	}, nil
}

func (f *FakeSensor) Close() error { return nil }
