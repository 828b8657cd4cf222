package mqtt

import (
	"testing"

	"github.com/berfenger/eta2mqtt/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/button/refresh/press"
	r := buttonCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal("refresh", matches[0][1], "button extract")
}

func TestButtonCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/sensor/refresh/state"
	r := buttonCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(0, len(matches), "no matches")
}

func TestParseButtonCommandPayload(t *testing.T) {
	r := buttonCommandExtractor("eta2mqtt")

	cmd, err := parseButtonCommand(r, "eta2mqtt/button/refresh/press", []byte(MQTT_PAYLOAD_PRESS))
	require.NoError(t, err)
	assert.Equal(t, "refresh", cmd.DeviceId)
	assert.Equal(t, "button", cmd.Command)

	_, err = parseButtonCommand(r, "eta2mqtt/button/refresh/press", []byte("on"))
	assert.Error(t, err)

	_, err = parseButtonCommand(r, "other/button/refresh/press", []byte(MQTT_PAYLOAD_PRESS))
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	client := CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)

	assert.Equal("eta2mqtt/bridge/state", client.BridgeStateTopic())
	assert.Equal("eta2mqtt/sensor/eta_kessel/state", client.SensorStateTopic("eta_kessel"))
	assert.Equal("eta2mqtt/button/refresh/press", client.ButtonCommandTopic("refresh"))
	assert.Equal("eta2mqtt/button/+/press", client.commandTopic())
}
