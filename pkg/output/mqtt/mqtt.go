package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ericogr/accel-logger/pkg/config"
	"github.com/ericogr/accel-logger/pkg/output"
	"github.com/ericogr/accel-logger/pkg/sensor"
	"github.com/google/uuid"
)

const (
	// defaults
	DefaultServer     = "tcp://localhost:1883"
	DefaultStateTopic = "accelerometer"
	clientIDPrefix    = "accel-logger-"
	// discovery payload keys/values
	keyName                = "name"
	keyStateTopic          = "state_topic"
	keyUnitOfMeasurement   = "unit_of_measurement"
	keyStateClass          = "state_class"
	keyValueTemplate       = "value_template"
	keyJSONAttributesTopic = "json_attributes_topic"
	keyUniqueID            = "unique_id"
	unitAcceleration       = "m/s²"
	stateClassMeasurement  = "measurement"
	valueTemplateFmt       = "{{ value_json.%s }}"
)

var axes = []string{"x", "y", "z"}

type MQTTOutput struct {
	client     mqtt.Client
	stateTopic string
}

// payload is the JSON body published for each sample.
type payload struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Timestamp int64   `json:"timestamp"`
}

func NewMQTT(cfg config.MQTTConfig) (output.Output, error) {
	cfg = withDefaults(cfg)

	opts := mqtt.NewClientOptions().AddBroker(cfg.Server).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	m := &MQTTOutput{client: client, stateTopic: cfg.StateTopic}

	// Home Assistant discovery, one sensor entity per axis
	if cfg.DiscoveryTopic != "" {
		for _, axis := range axes {
			dTopic := discoveryTopic(cfg.DiscoveryTopic, axis)
			p := baseDiscoveryPayload(discoveryName(cfg, axis), cfg.StateTopic, discoveryUniqueID(cfg, axis), axis)
			if err := publishJSON(client, dTopic, true, p); err != nil {
				log.Printf("mqtt discovery publish error: %v", err)
			}
		}
	}

	return m, nil
}

func withDefaults(cfg config.MQTTConfig) config.MQTTConfig {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	if cfg.ClientID == "" {
		cfg.ClientID = clientIDPrefix + uuid.NewString()
	}
	if cfg.StateTopic == "" {
		cfg.StateTopic = DefaultStateTopic
	}
	return cfg
}

func (m *MQTTOutput) Publish(samples []sensor.Sample) error {
	for _, s := range samples {
		b, err := json.Marshal(payload{X: s.X, Y: s.Y, Z: s.Z, Timestamp: s.Timestamp.UnixMilli()})
		if err != nil {
			return err
		}
		token := m.client.Publish(m.stateTopic, 0, false, b)
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}

// helper: discovery topic for an axis; a %s formatter is replaced by the axis
func discoveryTopic(base, axis string) string {
	if strings.Contains(base, "%s") {
		return fmt.Sprintf(base, axis)
	}
	return strings.TrimSuffix(base, "/") + "/" + axis + "/config"
}

// helper: human-friendly discovery name with the axis appended
func discoveryName(cfg config.MQTTConfig, axis string) string {
	name := cfg.DiscoveryName
	if name == "" {
		name = "Accelerometer"
	}
	return fmt.Sprintf("%s %s", name, strings.ToUpper(axis))
}

// helper: unique id for discovery with the axis appended
func discoveryUniqueID(cfg config.MQTTConfig, axis string) string {
	uid := cfg.DiscoveryUniqueID
	if uid == "" {
		uid = cfg.ClientID
	}
	if uid == "" {
		return ""
	}
	return fmt.Sprintf("%s_%s", uid, axis)
}

// helper: base discovery payload map for one axis
func baseDiscoveryPayload(name, stateTopic, uniqueID, axis string) map[string]interface{} {
	p := map[string]interface{}{
		keyName:                name,
		keyStateTopic:          stateTopic,
		keyUnitOfMeasurement:   unitAcceleration,
		keyStateClass:          stateClassMeasurement,
		keyValueTemplate:       fmt.Sprintf(valueTemplateFmt, axis),
		keyJSONAttributesTopic: stateTopic,
	}
	if uniqueID != "" {
		p[keyUniqueID] = uniqueID
	}
	return p
}

// helper: marshal and publish JSON payload
func publishJSON(client mqtt.Client, topic string, retained bool, p map[string]interface{}) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	token := client.Publish(topic, 0, retained, b)
	token.Wait()
	return token.Error()
}
