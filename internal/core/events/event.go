package events

import (
	"time"

	. "github.com/berfenger/eta2mqtt/internal/core/domain"
)

// ReadingsToUpdateEvents skips failed readings so the last published state
// stays in place.
func ReadingsToUpdateEvents(readings []SensorReading) []any {
	var events []any
	for _, r := range readings {
		if r.Error != nil {
			continue
		}
		events = append(events, FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: r.SensorId,
			},
			Value:    r.Value,
			Decimals: r.Decimals,
		})
	}
	return events
}

func LastPollUpdateEvent(t time.Time) any {
	return TextSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_LAST_POLL,
		},
		Value: t.UTC().Format(time.RFC3339),
	}
}
