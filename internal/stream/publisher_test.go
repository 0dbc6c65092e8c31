package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"MQTT_BROKER_URL", "MQTT_CLIENT_ID", "MQTT_TOPIC", "MQTT_QOS", "SIM_TIME_SCALE"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "tcp://localhost:1883", cfg.BrokerURL)
	assert.Equal(t, "route-dynamics/telemetry", cfg.Topic)
	assert.Equal(t, byte(1), cfg.QOS)
	assert.Equal(t, 1.0, cfg.TimeScale)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("MQTT_BROKER_URL", "tcp://broker:1883")
	t.Setenv("MQTT_TOPIC", "fleet/replay")
	t.Setenv("MQTT_QOS", "2")
	t.Setenv("SIM_TIME_SCALE", "4.0")

	cfg := FromEnv()
	assert.Equal(t, "tcp://broker:1883", cfg.BrokerURL)
	assert.Equal(t, "fleet/replay", cfg.Topic)
	assert.Equal(t, byte(2), cfg.QOS)
	assert.Equal(t, 4.0, cfg.TimeScale)
}

func TestFromEnv_RejectsBadValues(t *testing.T) {
	t.Setenv("MQTT_QOS", "7")
	t.Setenv("SIM_TIME_SCALE", "-1")

	cfg := FromEnv()
	assert.Equal(t, byte(1), cfg.QOS)
	assert.Equal(t, 1.0, cfg.TimeScale)
}
