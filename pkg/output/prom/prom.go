// Package prom exposes the latest accelerometer values as prometheus gauges.
package prom

import (
	"github.com/ericogr/accel-logger/pkg/output"
	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type PromOutput struct {
	reg       prometheus.Registerer
	accel     *prometheus.GaugeVec
	published prometheus.Counter
}

func New(reg prometheus.Registerer) (output.Output, error) {
	p := &PromOutput{
		reg: reg,
		accel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "accelerometer_ms2",
			Help: "Latest accelerometer reading per axis in m/s².",
		}, []string{"axis"}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "accelerometer_samples_published_total",
			Help: "Samples published to prometheus.",
		}),
	}
	for _, c := range []prometheus.Collector{p.accel, p.published} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register prometheus metric")
		}
	}
	return p, nil
}

func (p *PromOutput) Publish(samples []sensor.Sample) error {
	for _, s := range samples {
		p.accel.WithLabelValues("x").Set(s.X)
		p.accel.WithLabelValues("y").Set(s.Y)
		p.accel.WithLabelValues("z").Set(s.Z)
		p.published.Inc()
	}
	return nil
}

func (p *PromOutput) Close() error {
	p.reg.Unregister(p.accel)
	p.reg.Unregister(p.published)
	return nil
}

// DropCounter is implemented by the broker.
type DropCounter interface {
	DropCount() int
}

// RegisterDropCounter exposes the number of messages the broker dropped for
// slow subscribers.
func RegisterDropCounter(reg prometheus.Registerer, src DropCounter) error {
	c := prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "broker_dropped_messages_total",
		Help: "Live messages dropped because a subscriber was full.",
	}, func() float64 { return float64(src.DropCount()) })
	return errors.Wrap(reg.Register(c), "register drop counter")
}
