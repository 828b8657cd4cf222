package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE  = "bridge"
	SENSOR_ID_LAST_POLL     = "last_poll"
	BUTTON_ID_REFRESH       = "refresh"
	SENSOR_TYPE_SENSOR      = "sensor"
	SENSOR_TYPE_BINARY      = "binary_sensor"
	COMPONENT_TYPE_BUTTON   = "button"
	CONTROLLER_MANUFACTURER = "ETA Heiztechnik"
	CONTROLLER_MODEL        = "ETA RESTful v1"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("eta2mqtt_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "eta2mqtt",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("eta2mqtt %s", md5HashShort(baseTopic)),
	}
}

func ControllerDevice(info *eta_rest.ControllerInfo) Device {
	serial := fmt.Sprintf("%s.%s", info.Serial1, info.Serial2)
	return Device{
		Id:           fmt.Sprintf("eta_controller_%s", md5HashShort(serial)),
		Manufacturer: CONTROLLER_MANUFACTURER,
		Model:        CONTROLLER_MODEL,
		Name:         fmt.Sprintf("ETA %s", serial),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{
		{
			Device:         bridgeDevice,
			Id:             SENSOR_ID_BRIDGE_STATE,
			SensorType:     SENSOR_TYPE_BINARY,
			Name:           "Bridge state",
			DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
			UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
		},
		{
			Device:         IdDevice(bridgeDevice),
			Id:             SENSOR_ID_LAST_POLL,
			SensorType:     SENSOR_TYPE_SENSOR,
			Name:           "Last poll",
			DeviceClass:    "timestamp",
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
			Icon:           "mdi:clock-check-outline",
			UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_LAST_POLL),
		},
	}
}

// ControllerSensors maps bound ETA sensors to discovery sensors. The first
// sensor carries the full device description, the rest only reference it.
func ControllerSensors(controllerDevice Device, sensors []ETASensor) []GenericSensor {
	var result []GenericSensor
	for i, s := range sensors {
		dev := controllerDevice
		if i > 0 {
			dev = IdDevice(controllerDevice)
		}
		result = append(result, GenericSensor{
			Device:            dev,
			Id:                s.Id,
			ObjectId:          s.Id,
			SensorType:        SENSOR_TYPE_SENSOR,
			Name:              s.Name,
			UniqueId:          s.UniqueId,
			UnitOfMeasurement: s.Endpoint.Unit,
			StateClass:        s.Endpoint.StateClass,
			DeviceClass:       s.Endpoint.DeviceClass,
		})
	}
	return result
}

func RefreshButton(bridgeDevice Device) GenericButton {
	return GenericButton{
		Device:         IdDevice(bridgeDevice),
		Id:             BUTTON_ID_REFRESH,
		Name:           "Refresh",
		EntityCategory: ENTITY_CLASS_CONFIG,
		Icon:           "mdi:refresh",
		UniqueId:       uniqueId(bridgeDevice.Id, BUTTON_ID_REFRESH),
	}
}

func uniqueId(deviceId, sensorId string) string {
	return fmt.Sprintf("%s_%s", deviceId, sensorId)
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[:8]
}
