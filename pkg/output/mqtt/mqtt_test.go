package mqtt

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ericogr/accel-logger/pkg/config"
)

func TestWithDefaults(t *testing.T) {
	cfg := withDefaults(config.MQTTConfig{})
	if cfg.Server != DefaultServer {
		t.Fatalf("server: %q", cfg.Server)
	}
	if cfg.StateTopic != DefaultStateTopic {
		t.Fatalf("state topic: %q", cfg.StateTopic)
	}
	if !strings.HasPrefix(cfg.ClientID, clientIDPrefix) || len(cfg.ClientID) == len(clientIDPrefix) {
		t.Fatalf("client id: %q", cfg.ClientID)
	}

	kept := withDefaults(config.MQTTConfig{ClientID: "phone", StateTopic: "s"})
	if kept.ClientID != "phone" || kept.StateTopic != "s" {
		t.Fatalf("explicit values overwritten: %+v", kept)
	}
}

func TestDiscoveryHelpers(t *testing.T) {
	if got := discoveryTopic("homeassistant/sensor/accel_%s/config", "y"); got != "homeassistant/sensor/accel_y/config" {
		t.Fatalf("formatted topic: %q", got)
	}
	if got := discoveryTopic("homeassistant/sensor/accel/", "z"); got != "homeassistant/sensor/accel/z/config" {
		t.Fatalf("plain topic: %q", got)
	}

	cfg := config.MQTTConfig{ClientID: "client1"}
	if got := discoveryName(cfg, "x"); got != "Accelerometer X" {
		t.Fatalf("name: %q", got)
	}
	if got := discoveryUniqueID(cfg, "x"); got != "client1_x" {
		t.Fatalf("unique id: %q", got)
	}
	if got := discoveryUniqueID(config.MQTTConfig{}, "x"); got != "" {
		t.Fatalf("empty unique id: %q", got)
	}

	p := baseDiscoveryPayload("Accelerometer Z", "accelerometer", "", "z")
	if p[keyValueTemplate] != "{{ value_json.z }}" {
		t.Fatalf("value template: %v", p[keyValueTemplate])
	}
	if _, ok := p[keyUniqueID]; ok {
		t.Fatalf("unique id should be omitted when empty")
	}
}

func TestPayloadJSON(t *testing.T) {
	b, err := json.Marshal(payload{X: 1, Y: 2, Z: 3, Timestamp: time.UnixMilli(1234).UnixMilli()})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"x":1,"y":2,"z":3,"timestamp":1234}` {
		t.Fatalf("payload: %s", b)
	}
}
