package domain

import (
	"time"

	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/asynkron/protoactor-go/actor"
)

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_ETA          = "eta"
	ACTOR_ID_SENSOR_POLL  = "sensorpoll"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

type ActorRef actor.PID

type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

// ETA actor

type GetDevicesInfoRequest struct {
	ActorRequestMixIn
}

type GetDevicesInfoResponse struct {
	ActorResponseMixIn
	Controller *eta_rest.ControllerInfo
	Sensors    []ETASensor
}

type GetSensorValuesRequest struct {
	ActorRequestMixIn
	Sensors []ETASensor
}

type GetSensorValuesResponse struct {
	ActorResponseMixIn
	Readings []SensorReading
}

// SensorReading is the outcome of one value fetch. Value already has the
// endpoint factor applied.
type SensorReading struct {
	SensorId string
	Value    float64
	Decimals uint
	Error    error
}

// Sensor poll actor

type RefreshRequest struct {
	ActorRequestMixIn
}

type GetSensorSnapshotRequest struct {
	ActorRequestMixIn
}

type SensorSnapshot struct {
	Sensor    ETASensor
	Value     *float64
	Decimals  uint
	UpdatedAt time.Time
	LastError string
}

type GetSensorSnapshotResponse struct {
	ActorResponseMixIn
	LastPoll time.Time
	Sensors  []SensorSnapshot
}

// MQTT actor

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
	Buttons []GenericButton
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// HA discovery actor

type RepublishDiscoveryRequest struct {
	ActorRequestMixIn
}

// Health

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
