package events

import (
	"errors"
	"testing"
	"time"

	"github.com/berfenger/eta2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestReadingsToUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	evs := ReadingsToUpdateEvents([]domain.SensorReading{
		{SensorId: "eta_a", Value: 12.5, Decimals: 1},
		{SensorId: "eta_b", Error: errors.New("timeout")},
		{SensorId: "eta_c", Value: 4.8, Decimals: 2},
	})
	assert.Len(evs, 2)

	first, ok := evs[0].(domain.FloatSensorUpdateEvent)
	assert.True(ok)
	assert.Equal("eta_a", first.SensorId())
	assert.Equal(12.5, first.Value)
	assert.EqualValues(1, first.Decimals)

	second := evs[1].(domain.FloatSensorUpdateEvent)
	assert.Equal("eta_c", second.Id)
}

func TestLastPollUpdateEvent(t *testing.T) {

	ts := time.Date(2024, 3, 1, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	ev, ok := LastPollUpdateEvent(ts).(domain.TextSensorUpdateEvent)
	assert.True(t, ok)
	assert.Equal(t, domain.SENSOR_ID_LAST_POLL, ev.Id)
	assert.Equal(t, "2024-03-01T09:30:00Z", ev.Value)
}
