package domain

import (
	"testing"

	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestDefaultEndpoints(t *testing.T) {

	assert := assert.New(t)

	endpoints := DefaultEndpoints()
	assert.Len(endpoints, 15)

	for _, e := range endpoints {
		assert.NotEmpty(e.URI)
		assert.NotEmpty(e.Unit, e.URI)
		assert.NotEmpty(e.DeviceClass, e.URI)
		assert.NotEmpty(e.StateClass, e.URI)
		assert.NotZero(e.Factor, e.URI)
	}

	solarEnergy := endpoints[14]
	assert.Equal(FUB_SOLAR+"/0/0/12349", solarEnergy.URI)
	assert.Equal(4.8, solarEnergy.Factor)
	assert.Equal(STATE_CLASS_TOTAL_INCREASING, solarEnergy.StateClass)
}

func TestEndpointWithDefaults(t *testing.T) {

	got := Endpoint{URI: "/1/2", Unit: UNIT_CELSIUS}.WithDefaults()
	want := Endpoint{
		URI:         "/1/2",
		Unit:        UNIT_CELSIUS,
		DeviceClass: DEVICE_CLASS_TEMPERATURE,
		StateClass:  STATE_CLASS_MEASUREMENT,
		Factor:      1.0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WithDefaults mismatch (-want +got):\n%s", diff)
	}

	// explicit values are kept
	kept := Endpoint{URI: "/1/2", DeviceClass: DEVICE_CLASS_POWER, Factor: 0.5}.WithDefaults()
	assert.Equal(t, DEVICE_CLASS_POWER, kept.DeviceClass)
	assert.Equal(t, 0.5, kept.Factor)
}

func TestSensorDecimals(t *testing.T) {

	assert := assert.New(t)

	two := uint(3)
	plain := ETASensor{Endpoint: Endpoint{Factor: 1}}
	scaled := ETASensor{Endpoint: Endpoint{Factor: 4.8}}
	explicit := ETASensor{Endpoint: Endpoint{Factor: 4.8, Decimals: &two}}

	assert.EqualValues(1, plain.Decimals(1))
	assert.EqualValues(0, plain.Decimals(-1))
	assert.EqualValues(2, scaled.Decimals(0))
	assert.EqualValues(3, explicit.Decimals(1))
}

func TestControllerSensors(t *testing.T) {

	assert := assert.New(t)

	dev := ControllerDevice(&eta_rest.ControllerInfo{Serial1: "11.123488", Serial2: "42"})
	assert.Equal(CONTROLLER_MANUFACTURER, dev.Manufacturer)
	assert.Equal("ETA 11.123488.42", dev.Name)

	sensors := ControllerSensors(dev, []ETASensor{
		{Id: "eta_a", Name: "A", UniqueId: "u_a", Endpoint: Endpoint{Unit: UNIT_CELSIUS}.WithDefaults()},
		{Id: "eta_b", Name: "B", UniqueId: "u_b", Endpoint: Endpoint{Unit: UNIT_BAR}.WithDefaults()},
	})
	assert.Len(sensors, 2)
	assert.Equal(dev, sensors[0].Device)
	assert.Equal(IdDevice(dev), sensors[1].Device)
	assert.Equal("eta_b", sensors[1].ObjectId)
	assert.Equal(UNIT_BAR, sensors[1].UnitOfMeasurement)
}
