package sensor

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ericogr/accel-logger/pkg/config"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	regDevID      = 0x00
	regBWRate     = 0x2C
	regPowerCtl   = 0x2D
	regDataFormat = 0x31
	regDataX0     = 0x32

	devID = 0xE5

	bwRate100Hz   = 0x0A
	powerMeasure  = 0x08
	formatFullRes = 0x0B // FULL_RES, ±16g

	// 3.9 mg/LSB in full resolution mode
	scaleG        = 0.0039
	standardGrav  = 9.80665
	scaleMS2PerLS = scaleG * standardGrav
)

type ADXL345Sensor struct {
	dev *i2c.Dev
	bus i2c.BusCloser
	cal config.CalibrationConfig
}

func NewADXL345Sensor(cfg config.Config) (Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2C.Bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c: %w", err)
	}
	s, err := newADXL345(bus, uint16(cfg.I2C.Address), cfg.Calibration)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return s, nil
}

func newADXL345(bus i2c.BusCloser, addr uint16, cal config.CalibrationConfig) (*ADXL345Sensor, error) {
	dev := &i2c.Dev{Addr: addr, Bus: bus}

	id := make([]byte, 1)
	if err := dev.Tx([]byte{regDevID}, id); err != nil {
		return nil, fmt.Errorf("read device id: %w", err)
	}
	if id[0] != devID {
		return nil, fmt.Errorf("unexpected device id 0x%02X", id[0])
	}
	for _, w := range [][]byte{
		{regBWRate, bwRate100Hz},
		{regDataFormat, formatFullRes},
		{regPowerCtl, powerMeasure},
	} {
		if err := dev.Tx(w, nil); err != nil {
			return nil, fmt.Errorf("write register 0x%02X: %w", w[0], err)
		}
	}
	return &ADXL345Sensor{dev: dev, bus: bus, cal: cal}, nil
}

func (s *ADXL345Sensor) Close() error {
	if s.bus != nil {
		return s.bus.Close()
	}
	return nil
}

func (s *ADXL345Sensor) Read() (Event, error) {
	buf := make([]byte, 6)
	if err := s.dev.Tx([]byte{regDataX0}, buf); err != nil {
		return Event{}, fmt.Errorf("read axes: %w", err)
	}
	return Event{
		Type:      TypeAccelerometer,
		Values:    calibrate(decodeAxes(buf), s.cal),
		Timestamp: time.Now(),
	}, nil
}

// decodeAxes converts DATAX0..DATAZ1 (little endian, two's complement) to m/s².
func decodeAxes(buf []byte) [3]float64 {
	var out [3]float64
	for i := range out {
		raw := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		out[i] = float64(raw) * scaleMS2PerLS
	}
	return out
}
