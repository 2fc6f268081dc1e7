package prom

import (
	"strings"
	"testing"

	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPublishSetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	out, err := New(reg)
	require.NoError(t, err)

	require.NoError(t, out.Publish([]sensor.Sample{{X: 1, Y: 2, Z: 3}, {X: 0.5, Y: -0.5, Z: 9.8}}))

	p := out.(*PromOutput)
	require.Equal(t, 0.5, testutil.ToFloat64(p.accel.WithLabelValues("x")))
	require.Equal(t, -0.5, testutil.ToFloat64(p.accel.WithLabelValues("y")))
	require.Equal(t, 9.8, testutil.ToFloat64(p.accel.WithLabelValues("z")))
	require.Equal(t, 2.0, testutil.ToFloat64(p.published))

	require.NoError(t, out.Close())
	// registering again after Close must work
	_, err = New(reg)
	require.NoError(t, err)
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.Error(t, err)
}

type dropCount int

func (d *dropCount) DropCount() int { return int(*d) }

func TestRegisterDropCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	var drops dropCount
	require.NoError(t, RegisterDropCounter(reg, &drops))

	drops = 7
	expected := `
# HELP broker_dropped_messages_total Live messages dropped because a subscriber was full.
# TYPE broker_dropped_messages_total counter
broker_dropped_messages_total 7
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "broker_dropped_messages_total"))

	require.Error(t, RegisterDropCounter(reg, &drops))
}
