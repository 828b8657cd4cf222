package metrics

import (
	"net/http"
	"time"

	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bridge collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	sensorValue     *prometheus.GaugeVec
	pollErrors      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	lastPoll        prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sensorValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eta2mqtt_sensor_value",
			Help: "Last value read from the controller, factor applied",
		}, []string{"sensor_id", "unit"}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eta2mqtt_sensor_poll_errors_total",
			Help: "Failed value fetches per sensor",
		}, []string{"sensor_id"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eta2mqtt_rest_request_duration_seconds",
			Help:    "Duration of controller REST requests",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"operation"}),
		lastPoll: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "eta2mqtt_last_poll_timestamp_seconds",
			Help: "Unix time of the last completed poll",
		}),
	}
	m.registry.MustRegister(m.sensorValue, m.pollErrors, m.requestDuration, m.lastPoll)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument feeds REST reader timings into the request duration histogram.
func (m *Metrics) Instrument() eta_rest.Instrument {
	return eta_rest.Instrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			m.requestDuration.WithLabelValues(fnName).Observe(readTime.Seconds())
		},
	}
}

// ObservePoll records one poll cycle. Readings without a matching sensor
// are skipped.
func (m *Metrics) ObservePoll(sensors []domain.ETASensor, readings []domain.SensorReading, at time.Time) {
	units := make(map[string]string, len(sensors))
	for _, s := range sensors {
		units[s.Id] = s.Endpoint.Unit
	}
	for _, r := range readings {
		unit, ok := units[r.SensorId]
		if !ok {
			continue
		}
		if r.Error != nil {
			m.pollErrors.WithLabelValues(r.SensorId).Inc()
			continue
		}
		m.sensorValue.WithLabelValues(r.SensorId, unit).Set(r.Value)
	}
	m.lastPoll.Set(float64(at.Unix()))
}
