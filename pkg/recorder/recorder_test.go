package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ericogr/accel-logger/pkg/live"
	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/ericogr/accel-logger/pkg/store"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}

type sliceSink struct {
	rows []*store.AccelerometerData
}

func (s *sliceSink) Enqueue(row *store.AccelerometerData) bool {
	s.rows = append(s.rows, row)
	return true
}

func TestOnEventRecordsOnlyAccelerometer(t *testing.T) {
	sink := &sliceSink{}
	state := live.New(10, nil)
	r := New(sink, state, discardLogger{})
	callbackTime := time.UnixMilli(1700000000123)
	r.now = func() time.Time { return callbackTime }

	r.OnEvent(sensor.Event{Type: sensor.TypeGyroscope, Values: [3]float64{9, 9, 9}})
	require.Empty(t, sink.rows)
	_, ok := state.Latest()
	require.False(t, ok)

	r.OnEvent(sensor.Event{
		Type:      sensor.TypeAccelerometer,
		Values:    [3]float64{0.25, -0.5, 9.75},
		Timestamp: time.UnixMilli(1),
	})
	require.Len(t, sink.rows, 1)
	row := sink.rows[0]
	require.Equal(t, float32(0.25), row.X)
	require.Equal(t, float32(-0.5), row.Y)
	require.Equal(t, float32(9.75), row.Z)
	require.Equal(t, callbackTime.UnixMilli(), row.Timestamp)

	latest, ok := state.Latest()
	require.True(t, ok)
	require.Equal(t, 9.75, latest.Z)
}

func TestEveryCallbackPersistsOneRow(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "sensor_database.db"))
	require.NoError(t, err)
	defer st.Close()

	w := store.NewWriter(st, 16, 5*time.Millisecond, discardLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	r := New(w, live.New(10, nil), discardLogger{})
	for i := 0; i < 25; i++ {
		typ := sensor.TypeAccelerometer
		if i%5 == 0 {
			typ = sensor.TypeMagnetometer
		}
		r.OnEvent(sensor.Event{Type: typ, Values: [3]float64{float64(i), 0, 0}})
	}
	cancel()
	require.NoError(t, <-errCh)

	rows, err := st.AllData(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 20)
	for _, row := range rows {
		require.NotZero(t, int(row.X)%5)
	}
}
