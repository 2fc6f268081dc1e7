package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chrispappas/golang-generics-set/set"
	"gopkg.in/yaml.v3"
)

const (
	SensorReal       = "real"
	SensorSimulation = "simulation"

	OutputConsole    = "console"
	OutputMQTT       = "mqtt"
	OutputPrometheus = "prometheus"
)

var outputTypes = set.FromSlice([]string{OutputConsole, OutputMQTT, OutputPrometheus})

type I2CConfig struct {
	Bus     string `json:"bus" yaml:"bus"`
	Address int    `json:"address" yaml:"address"`
}

// AxisCalibration is applied to every axis reading as value*scale + offset.
type AxisCalibration struct {
	Scale  float64 `json:"scale" yaml:"scale"`
	Offset float64 `json:"offset" yaml:"offset"`
}

type CalibrationConfig struct {
	X AxisCalibration `json:"x" yaml:"x"`
	Y AxisCalibration `json:"y" yaml:"y"`
	Z AxisCalibration `json:"z" yaml:"z"`
}

type MQTTConfig struct {
	Server            string `json:"server" yaml:"server"`
	Username          string `json:"username" yaml:"username"`
	Password          string `json:"password" yaml:"password"`
	ClientID          string `json:"client_id" yaml:"client_id"`
	StateTopic        string `json:"state_topic" yaml:"state_topic"`
	DiscoveryTopic    string `json:"discovery_topic,omitempty" yaml:"discovery_topic,omitempty"`
	DiscoveryName     string `json:"discovery_name,omitempty" yaml:"discovery_name,omitempty"`
	DiscoveryUniqueID string `json:"discovery_unique_id,omitempty" yaml:"discovery_unique_id,omitempty"`
}

type OutputConfig struct {
	Type       string      `json:"type" yaml:"type"`
	IntervalMs int         `json:"interval_ms,omitempty" yaml:"interval_ms,omitempty"`
	MQTT       *MQTTConfig `json:"mqtt,omitempty" yaml:"mqtt,omitempty"`
}

type Config struct {
	I2C           I2CConfig         `json:"i2c" yaml:"i2c"`
	SensorType    string            `json:"sensor_type" yaml:"sensor_type"`
	SensorDelayMs int               `json:"sensor_delay_ms" yaml:"sensor_delay_ms"`
	Calibration   CalibrationConfig `json:"calibration" yaml:"calibration"`
	DatabasePath  string            `json:"database_path" yaml:"database_path"`
	ClearOnStart  bool              `json:"clear_on_start" yaml:"clear_on_start"`
	WriterBatchMs int               `json:"writer_batch_ms" yaml:"writer_batch_ms"`
	ExportDir     string            `json:"export_dir" yaml:"export_dir"`
	HTTPAddress   string            `json:"http_address" yaml:"http_address"`
	RecentSize    int               `json:"recent_size" yaml:"recent_size"`
	Outputs       []OutputConfig    `json:"outputs" yaml:"outputs"`
}

func DefaultConfig() Config {
	unit := AxisCalibration{Scale: 1.0}
	return Config{
		I2C:           I2CConfig{Bus: "1", Address: 0x53},
		SensorType:    SensorReal,
		SensorDelayMs: 200,
		Calibration:   CalibrationConfig{X: unit, Y: unit, Z: unit},
		DatabasePath:  "sensor_database.db",
		ClearOnStart:  true,
		WriterBatchMs: 100,
		ExportDir:     ".",
		HTTPAddress:   "0.0.0.0:8000",
		RecentSize:    100,
		Outputs:       []OutputConfig{{Type: OutputConsole, IntervalMs: 1000}},
	}
}

// LoadFromFlags loads configuration from os.Args.
func LoadFromFlags() (Config, error) {
	return Load(os.Args[1:])
}

// Load reads an optional JSON or YAML config file and then applies flags.
// Flags override values present in the file.
func Load(args []string) (Config, error) {
	fs := flag.NewFlagSet("accel-logger", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to JSON or YAML config file")
	flagI2CBus := fs.String("i2c-bus", "", "I2C bus (e.g., '1' -> /dev/i2c-1)")
	flagI2CAddStr := fs.String("i2c-address", "", "I2C address (decimal or 0x hex)")
	flagSensorType := fs.String("sensor-type", "", "sensor type: real|simulation")
	flagDelay := fs.Int("sensor-delay-ms", -1, "Sensor polling delay in ms")
	flagScale := fs.Float64("calibration", math.NaN(), "Calibration scale factor applied to all axes")
	flagDB := fs.String("db", "", "Path to the sqlite database file")
	flagClear := fs.String("clear-on-start", "", "Delete stored samples on startup (true|false)")
	flagExportDir := fs.String("export-dir", "", "Directory the CSV export is written to")
	flagHTTP := fs.String("http", "", "HTTP listen address")
	flagOutputs := fs.String("outputs", "", "Comma-separated outputs (console,mqtt,prometheus)")
	flagOutputIntervals := fs.String("output-intervals", "", "Comma-separated output intervals e.g. console=1000,mqtt=5000")
	flagMQTTServer := fs.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := fs.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := fs.String("mqtt-pass", "", "MQTT password")
	flagClientID := fs.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := fs.String("mqtt-topic", "", "MQTT state topic")

	if err := fs.Parse(args); err != nil {
		return DefaultConfig(), err
	}

	cfg := DefaultConfig()

	if *cfgPath != "" {
		if err := loadFile(*cfgPath, &cfg); err != nil {
			return cfg, err
		}
	}

	if *flagI2CBus != "" {
		cfg.I2C.Bus = *flagI2CBus
	}
	if *flagI2CAddStr != "" {
		v, err := parseIntOrHex(*flagI2CAddStr)
		if err != nil {
			return cfg, fmt.Errorf("i2c-address: %w", err)
		}
		cfg.I2C.Address = v
	}
	if *flagSensorType != "" {
		cfg.SensorType = *flagSensorType
	}
	if *flagDelay != -1 {
		cfg.SensorDelayMs = *flagDelay
	}
	if !math.IsNaN(*flagScale) {
		cfg.Calibration.X.Scale = *flagScale
		cfg.Calibration.Y.Scale = *flagScale
		cfg.Calibration.Z.Scale = *flagScale
	}
	if *flagDB != "" {
		cfg.DatabasePath = *flagDB
	}
	if *flagClear != "" {
		v, err := strconv.ParseBool(*flagClear)
		if err != nil {
			return cfg, fmt.Errorf("clear-on-start: %w", err)
		}
		cfg.ClearOnStart = v
	}
	if *flagExportDir != "" {
		cfg.ExportDir = *flagExportDir
	}
	if *flagHTTP != "" {
		cfg.HTTPAddress = *flagHTTP
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	if *flagOutputIntervals != "" {
		intervals, err := parseOutputIntervals(*flagOutputIntervals)
		if err != nil {
			return cfg, fmt.Errorf("output-intervals: %w", err)
		}
		for i := range cfg.Outputs {
			if v, ok := intervals[cfg.Outputs[i].Type]; ok {
				cfg.Outputs[i].IntervalMs = v
			}
		}
	}
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		applyMQTT := func(m *MQTTConfig) {
			if *flagMQTTServer != "" {
				m.Server = *flagMQTTServer
			}
			if *flagMQTTUser != "" {
				m.Username = *flagMQTTUser
			}
			if *flagMQTTPass != "" {
				m.Password = *flagMQTTPass
			}
			if *flagClientID != "" {
				m.ClientID = *flagClientID
			}
			if *flagTopic != "" {
				m.StateTopic = *flagTopic
			}
		}
		applied := false
		for i := range cfg.Outputs {
			if strings.ToLower(cfg.Outputs[i].Type) == OutputMQTT {
				if cfg.Outputs[i].MQTT == nil {
					cfg.Outputs[i].MQTT = &MQTTConfig{}
				}
				applyMQTT(cfg.Outputs[i].MQTT)
				applied = true
			}
		}
		if !applied {
			out := OutputConfig{Type: OutputMQTT, MQTT: &MQTTConfig{}}
			applyMQTT(out.MQTT)
			cfg.Outputs = append(cfg.Outputs, out)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks the values that the rest of the program relies on.
func (c Config) Validate() error {
	if c.SensorType != SensorReal && c.SensorType != SensorSimulation {
		return fmt.Errorf("unknown sensor type %q", c.SensorType)
	}
	if c.SensorDelayMs <= 0 {
		return errors.New("sensor-delay-ms must be > 0")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	for _, o := range c.Outputs {
		if !outputTypes.Has(strings.ToLower(o.Type)) {
			return fmt.Errorf("unknown output type %q", o.Type)
		}
	}
	return nil
}

// SensorDelay is the polling delay. The 200ms default in DefaultConfig matches
// the platform "normal" rate; Validate rejects anything <= 0.
func (c Config) SensorDelay() time.Duration {
	return time.Duration(c.SensorDelayMs) * time.Millisecond
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	default:
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func parseIntOrHex(s string) (int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 0)
		return int(v), err
	}
	v, err := strconv.Atoi(s)
	return v, err
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseOutputIntervals parses "console=1000,mqtt=5000".
func parseOutputIntervals(s string) (map[string]int, error) {
	out := map[string]int{}
	for _, p := range parseCSV(s) {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid entry '%s'", p)
		}
		v, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid interval '%s': %w", p, err)
		}
		out[strings.TrimSpace(kv[0])] = v
	}
	return out, nil
}
