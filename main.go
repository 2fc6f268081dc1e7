package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ericogr/accel-logger/pkg/broker"
	"github.com/ericogr/accel-logger/pkg/config"
	"github.com/ericogr/accel-logger/pkg/export"
	"github.com/ericogr/accel-logger/pkg/live"
	"github.com/ericogr/accel-logger/pkg/output"
	"github.com/ericogr/accel-logger/pkg/output/console"
	"github.com/ericogr/accel-logger/pkg/output/mqtt"
	"github.com/ericogr/accel-logger/pkg/output/prom"
	"github.com/ericogr/accel-logger/pkg/recorder"
	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/ericogr/accel-logger/pkg/store"
	"github.com/ericogr/accel-logger/pkg/ui"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const writerBufferSize = 256

type outputEntry struct {
	Out        output.Output
	Type       string
	IntervalMs int
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	if err := store.LogAll(ctx, st, logger); err != nil {
		logger.Printf("log entries: %v", err)
	}
	if cfg.ClearOnStart {
		if err := st.ClearAllData(ctx); err != nil {
			return fmt.Errorf("clear database: %w", err)
		}
	}

	br := broker.NewBroker()
	go br.Start()
	defer br.Stop()

	state := live.New(cfg.RecentSize, br)

	sens, err := sensor.New(cfg)
	if err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}
	defer sens.Close()

	if err := prom.RegisterDropCounter(prometheus.DefaultRegisterer, br); err != nil {
		return err
	}

	entries, err := initOutputs(&cfg, cfg.SensorDelayMs, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer func() {
		for _, e := range entries {
			_ = e.Out.Close()
		}
	}()

	writer := store.NewWriter(st, writerBufferSize, time.Duration(cfg.WriterBatchMs)*time.Millisecond, logger)
	rec := recorder.New(writer, state, logger)
	exporter := export.NewExporter(st, cfg.ExportDir, state, logger)

	gin.SetMode(gin.ReleaseMode)
	srv, err := ui.New(ctx, state, st, exporter, br, logger)
	if err != nil {
		return fmt.Errorf("setup ui: %w", err)
	}

	errCh := make(chan error, 2)
	writerDone := make(chan error, 1)

	go func() { writerDone <- writer.Run(ctx) }()
	go func() {
		if err := sensor.NewListener(sens, cfg.SensorDelay(), logger).Run(ctx, rec.OnEvent); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := srv.Run(ctx, cfg.HTTPAddress); err != nil {
			errCh <- err
		}
	}()
	for _, e := range entries {
		go runOutput(ctx, e, state, logger)
	}

	logger.Printf("recording %s sensor every %s", cfg.SensorType, cfg.SensorDelay())

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		stop()
	case runErr = <-writerDone:
		stop()
		return runErr
	}
	if err := <-writerDone; err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// initOutputs builds every configured output and fills in missing intervals.
func initOutputs(cfg *config.Config, defaultIntervalMs int, reg prometheus.Registerer) ([]outputEntry, error) {
	entries := make([]outputEntry, 0, len(cfg.Outputs))
	for i := range cfg.Outputs {
		oc := &cfg.Outputs[i]
		if oc.IntervalMs <= 0 {
			oc.IntervalMs = defaultIntervalMs
		}
		var (
			out output.Output
			err error
		)
		switch strings.ToLower(oc.Type) {
		case config.OutputConsole:
			out = console.NewConsole()
		case config.OutputMQTT:
			mc := config.MQTTConfig{}
			if oc.MQTT != nil {
				mc = *oc.MQTT
			}
			out, err = mqtt.NewMQTT(mc)
		case config.OutputPrometheus:
			out, err = prom.New(reg)
		default:
			err = fmt.Errorf("unknown output type %q", oc.Type)
		}
		if err != nil {
			for _, e := range entries {
				_ = e.Out.Close()
			}
			return nil, fmt.Errorf("init output %s: %w", oc.Type, err)
		}
		entries = append(entries, outputEntry{Out: out, Type: oc.Type, IntervalMs: oc.IntervalMs})
	}
	return entries, nil
}

type latestSource interface {
	Latest() (sensor.Sample, bool)
}

// runOutput publishes the latest sample on every tick, skipping ticks without a new one.
func runOutput(ctx context.Context, e outputEntry, src latestSource, logger *log.Logger) {
	ticker := time.NewTicker(time.Duration(e.IntervalMs) * time.Millisecond)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, ok := src.Latest()
			if !ok || !s.Timestamp.After(last) {
				continue
			}
			last = s.Timestamp
			if err := e.Out.Publish([]sensor.Sample{s}); err != nil {
				logger.Printf("%s output error: %v", e.Type, err)
			}
		}
	}
}
