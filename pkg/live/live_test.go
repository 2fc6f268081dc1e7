package live

import (
	"testing"
	"time"

	"github.com/ericogr/accel-logger/pkg/broker"
	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	msgs []broker.Message
}

func (r *recordingPublisher) Publish(msg broker.Message) { r.msgs = append(r.msgs, msg) }

func TestLatestBeforeAndAfterUpdate(t *testing.T) {
	s := New(3, nil)
	_, ok := s.Latest()
	require.False(t, ok)

	s.Update(sensor.Sample{X: 1, Y: 2, Z: 3})
	got, ok := s.Latest()
	require.True(t, ok)
	require.Equal(t, 1.0, got.X)
	require.Equal(t, 3.0, got.Z)
}

func TestRecentIsBounded(t *testing.T) {
	s := New(3, nil)
	for i := 0; i < 5; i++ {
		s.Update(sensor.Sample{X: float64(i)})
	}
	recent := s.Recent()
	require.Len(t, recent, 3)
	require.Equal(t, []float64{2, 3, 4}, []float64{recent[0].X, recent[1].X, recent[2].X})
}

func TestUpdateAndNotifyPublish(t *testing.T) {
	pub := &recordingPublisher{}
	s := New(10, pub)
	ts := time.UnixMilli(42)
	s.now = func() time.Time { return ts }

	s.Update(sensor.Sample{X: 1, Timestamp: ts})
	s.Notify("Database exported to /tmp/database_export.csv")

	require.Len(t, pub.msgs, 2)
	require.Equal(t, broker.Sample{X: 1, Timestamp: ts}, pub.msgs[0])
	require.Equal(t, broker.Notice{Text: "Database exported to /tmp/database_export.csv", Timestamp: ts}, pub.msgs[1])
	require.Len(t, s.Notices(), 1)
}
