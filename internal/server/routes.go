package server

import (
	"net/http"
	"time"

	"github.com/berfenger/eta2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type sensorDTO struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	UniqueId  string     `json:"unique_id"`
	URI       string     `json:"uri"`
	Unit      string     `json:"unit"`
	Value     *float64   `json:"value"`
	Decimals  uint       `json:"decimals"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type sensorsDTO struct {
	LastPoll *time.Time  `json:"last_poll,omitempty"`
	Sensors  []sensorDTO `json:"sensors"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/api/sensors", s.SensorsHandler)
	if s.metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, s.requestTimeout).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) SensorsHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetSensorSnapshotRequest{}, s.requestTimeout).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sensor snapshot unavailable")
	}
	snap, ok := res.(domain.GetSensorSnapshotResponse)
	if !ok || snap.HasResponseError() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "sensor snapshot unavailable")
	}
	return c.JSON(http.StatusOK, snapshotToDTO(snap))
}

func snapshotToDTO(snap domain.GetSensorSnapshotResponse) sensorsDTO {
	dto := sensorsDTO{
		Sensors: make([]sensorDTO, 0, len(snap.Sensors)),
	}
	if !snap.LastPoll.IsZero() {
		lastPoll := snap.LastPoll.UTC()
		dto.LastPoll = &lastPoll
	}
	for _, s := range snap.Sensors {
		item := sensorDTO{
			Id:       s.Sensor.Id,
			Name:     s.Sensor.Name,
			UniqueId: s.Sensor.UniqueId,
			URI:      s.Sensor.Endpoint.URI,
			Unit:     s.Sensor.Endpoint.Unit,
			Value:    s.Value,
			Decimals: s.Decimals,
			Error:    s.LastError,
		}
		if !s.UpdatedAt.IsZero() {
			updated := s.UpdatedAt.UTC()
			item.UpdatedAt = &updated
		}
		dto.Sensors = append(dto.Sensors, item)
	}
	return dto
}
