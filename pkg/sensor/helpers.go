package sensor

import "github.com/ericogr/accel-logger/pkg/config"

// calibrate applies per-axis scale and offset. A zero scale is treated as 1.
func calibrate(values [3]float64, cal config.CalibrationConfig) [3]float64 {
	axes := [3]config.AxisCalibration{cal.X, cal.Y, cal.Z}
	var out [3]float64
	for i, a := range axes {
		scale := a.Scale
		if scale == 0 {
			scale = 1
		}
		out[i] = values[i]*scale + a.Offset
	}
	return out
}
