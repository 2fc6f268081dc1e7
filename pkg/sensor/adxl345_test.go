package sensor

import (
	"math"
	"testing"

	"github.com/ericogr/accel-logger/pkg/config"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDecodeAxes(t *testing.T) {
	// x=256, y=-256, z=1 (little endian)
	buf := []byte{0x00, 0x01, 0x00, 0xFF, 0x01, 0x00}
	got := decodeAxes(buf)
	want := [3]float64{256 * scaleMS2PerLS, -256 * scaleMS2PerLS, scaleMS2PerLS}
	for i := range got {
		if !approx(got[i], want[i]) {
			t.Fatalf("axis %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestCalibrate(t *testing.T) {
	cal := config.CalibrationConfig{
		X: config.AxisCalibration{Scale: 2, Offset: 1},
		Z: config.AxisCalibration{Offset: -0.5},
	}
	got := calibrate([3]float64{1, 2, 3}, cal)
	want := [3]float64{3, 2, 2.5}
	if got != want {
		t.Fatalf("calibrate: got %v want %v", got, want)
	}
}

func TestADXL345InitAndRead(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x53, W: []byte{regDevID}, R: []byte{devID}},
			{Addr: 0x53, W: []byte{regBWRate, bwRate100Hz}},
			{Addr: 0x53, W: []byte{regDataFormat, formatFullRes}},
			{Addr: 0x53, W: []byte{regPowerCtl, powerMeasure}},
			{Addr: 0x53, W: []byte{regDataX0}, R: []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01}},
		},
	}
	s, err := newADXL345(bus, 0x53, config.DefaultConfig().Calibration)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	ev, err := s.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.Type != TypeAccelerometer {
		t.Fatalf("type: %v", ev.Type)
	}
	if ev.Values[0] != 0 || ev.Values[1] != 0 || !approx(ev.Values[2], 256*scaleMS2PerLS) {
		t.Fatalf("values: %v", ev.Values)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestADXL345RejectsWrongDevice(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{{Addr: 0x53, W: []byte{regDevID}, R: []byte{0x42}}},
	}
	if _, err := newADXL345(bus, 0x53, config.CalibrationConfig{}); err == nil {
		t.Fatalf("expected error for unknown device id")
	}
}

func configForTest() config.Config {
	cfg := config.DefaultConfig()
	cfg.SensorType = config.SensorSimulation
	return cfg
}
