package mqtt

import (
	"encoding/json"
	"testing"

	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/util"
	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *MQTTClient {
	cfg := util.LoadTestConfig()
	cfg.MQTT.HADiscoveryTopic = "hass"
	return CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)
}

func TestETASensorDiscovery(t *testing.T) {
	client := testClient()
	dev := domain.ControllerDevice(&eta_rest.ControllerInfo{Serial1: "11.123488", Serial2: "42"})
	sensors := domain.ControllerSensors(dev, []domain.ETASensor{
		{
			Endpoint: domain.Endpoint{URI: "/120/10601/0/0/12197", Unit: domain.UNIT_CELSIUS}.WithDefaults(),
			Id:       "eta_aussentemperatur",
			Name:     "Außentemperatur",
			UniqueId: "eta_11.123488.42.Außentemperatur",
		},
	})
	require.Len(t, sensors, 1)

	msg := GenericSensorToHADiscoveryMessage(client, sensors[0])

	assert.Equal(t, "eta2mqtt/sensor/eta_aussentemperatur/state", msg.StateTopic)
	assert.Equal(t, "eta2mqtt/bridge/state", msg.AvTopic)
	assert.Equal(t, "eta_aussentemperatur", msg.ObjectId)
	assert.Equal(t, "eta_11.123488.42.Außentemperatur", msg.UniqueId)
	assert.Equal(t, domain.DEVICE_CLASS_TEMPERATURE, msg.DeviceClass)
	assert.Equal(t, domain.STATE_CLASS_MEASUREMENT, msg.StateClass)
	assert.Equal(t, domain.CONTROLLER_MANUFACTURER, msg.Device.Manufacturer)
	assert.Equal(t, "hass/sensor/"+dev.Id+"/eta_aussentemperatur/config", client.HADiscoverySensorTopic(sensors[0]))
}

func TestBridgeStateDiscovery(t *testing.T) {
	client := testClient()
	sensors := domain.BridgeSensors(domain.BridgeDevice("eta2mqtt"))

	msg := GenericSensorToHADiscoveryMessage(client, sensors[0])

	assert.Equal(t, client.BridgeStateTopic(), msg.StateTopic)
	assert.Equal(t, MQTT_PAYLOAD_ONLINE, msg.PayloadOn)
	assert.Equal(t, MQTT_PAYLOAD_OFFLINE, msg.PayloadOff)
	assert.Contains(t, client.HADiscoverySensorTopic(sensors[0]), "hass/binary_sensor/")
}

func TestRefreshButtonDiscovery(t *testing.T) {
	client := testClient()
	button := domain.RefreshButton(domain.BridgeDevice("eta2mqtt"))

	msg := GenericButtonToHADiscoveryMessage(client, button)

	assert.Equal(t, "eta2mqtt/button/refresh/press", msg.CommandTopic)
	assert.Equal(t, MQTT_PAYLOAD_PRESS, msg.PayloadPress)
	assert.Empty(t, msg.StateTopic)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"payload_press":"PRESS"`)
	assert.NotContains(t, string(raw), "state_topic")
	assert.Equal(t, "hass/button/"+button.Device.Id+"/refresh/config", client.HADiscoveryButtonTopic(button))
}
