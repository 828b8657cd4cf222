package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePoll(t *testing.T) {
	m := New()
	sensors := []domain.ETASensor{
		{Id: "eta_kessel", Endpoint: domain.Endpoint{Unit: domain.UNIT_CELSIUS}},
		{Id: "eta_leistung", Endpoint: domain.Endpoint{Unit: domain.UNIT_KILO_WATT}},
	}
	readings := []domain.SensorReading{
		{SensorId: "eta_kessel", Value: 71},
		{SensorId: "eta_leistung", Error: errors.New("timeout")},
		{SensorId: "eta_other", Value: 1},
	}
	at := time.Unix(1700000000, 0)

	m.ObservePoll(sensors, readings, at)
	m.ObservePoll(sensors, readings, at)

	assert.Equal(t, 71.0, testutil.ToFloat64(m.sensorValue.WithLabelValues("eta_kessel", "°C")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pollErrors.WithLabelValues("eta_leistung")))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.lastPoll))
	assert.Equal(t, 1, testutil.CollectAndCount(m.sensorValue))
}

func TestInstrumentAndHandler(t *testing.T) {
	m := New()
	done := eta_rest.RecordTimer("GetValue", []eta_rest.Instrument{m.Instrument()})
	done()

	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `eta2mqtt_rest_request_duration_seconds_count{operation="GetValue"} 1`)
}
