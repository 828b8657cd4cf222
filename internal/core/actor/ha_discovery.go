package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/eta2mqtt/internal/config"
	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	HA_DISCOVERY_RETRY_INTERVAL = 5 * time.Second
)

type HADiscoveryActor struct {
	config           *config.Config
	behavior         actor.Behavior
	stash            *actorutil.Stash
	scheduler        *scheduler.TimerScheduler
	etaActor         *actor.PID
	mqttActor        *actor.PID
	etaActorHealthy  bool
	mqttActorHealthy bool
	healthyRecv      int

	logger *zap.Logger
}

type retryDiscovery struct {
}

func NewHADiscoveryActor(config *config.Config, etaActor *actor.PID, mqttActor *actor.PID, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:    config,
		etaActor:  etaActor,
		mqttActor: mqttActor,
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.checkHealth(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// checkHealth asks the ETA and MQTT actors for health. Discovery is only
// published once both answer healthy.
func (state *HADiscoveryActor) checkHealth(ctx actor.Context) {
	state.healthyRecv = 0
	state.etaActorHealthy = false
	state.mqttActorHealthy = false
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.etaActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
		return domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ETA,
			Healthy: false,
		}
	})
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
		return domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: false,
		}
	})
	state.behavior.Become(state.WaitingHealthyReceive)
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_ETA:
				state.etaActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv < 2 {
			return
		}
		if state.etaActorHealthy && state.mqttActorHealthy {
			actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.etaActor, domain.GetDevicesInfoRequest{}, 30*time.Second), func(err error) any {
				return domain.GetDevicesInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
			state.behavior.Become(state.WaitingInfoReceive)
		} else {
			state.logger.Warn("hadiscovery: ETA or MQTT actor not healthy, retrying",
				zap.Bool("eta", state.etaActorHealthy), zap.Bool("mqtt", state.mqttActorHealthy))
			state.scheduler.RequestOnce(HA_DISCOVERY_RETRY_INTERVAL, ctx.Self(), retryDiscovery{})
			state.behavior.Become(state.DoneReceive)
		}
	case domain.RepublishDiscoveryRequest:
		// already in progress
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetDevicesInfoResponse:
		if msg.HasResponseError() {
			state.logger.Error("hadiscovery@info: GetDevicesInfoResponse", zap.Error(msg.GetResponseError()))
			state.scheduler.RequestOnce(HA_DISCOVERY_RETRY_INTERVAL, ctx.Self(), retryDiscovery{})
			state.behavior.Become(state.DoneReceive)
			return
		}
		state.logger.Debug("hadiscovery@info: GetDevicesInfoResponse", zap.Int("sensors", len(msg.Sensors)))

		sensors, buttons := DiscoveryEntities(state.config.MQTT.BaseTopic, msg)
		ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
			Sensors: sensors,
			Buttons: buttons,
		})
		state.logger.Info("home assistant discovery published", zap.Int("sensors", len(sensors)), zap.Int("buttons", len(buttons)))
		state.behavior.Become(state.DoneReceive)
		state.stash.UnstashAll(ctx)
	case domain.RepublishDiscoveryRequest:
		// already in progress
	default:
		state.logger.Debug("hadiscovery@info: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) DoneReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.RepublishDiscoveryRequest:
		state.logger.Debug("hadiscovery@done: RepublishDiscoveryRequest")
		state.checkHealth(ctx)
	case retryDiscovery:
		state.checkHealth(ctx)
	default:
		state.logger.Debug("hadiscovery@done: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// DiscoveryEntities lists the bridge sensors, one sensor per bound ETA
// endpoint and the refresh button.
func DiscoveryEntities(baseTopic string, info domain.GetDevicesInfoResponse) ([]domain.GenericSensor, []domain.GenericButton) {
	var sensors []domain.GenericSensor

	bridgeDevice := domain.BridgeDevice(baseTopic)
	sensors = append(sensors, domain.BridgeSensors(bridgeDevice)...)

	if info.Controller != nil {
		controllerDevice := domain.ControllerDevice(info.Controller)
		controllerDevice.ViaDevice = bridgeDevice.Id
		sensors = append(sensors, domain.ControllerSensors(controllerDevice, info.Sensors)...)
	}

	return sensors, []domain.GenericButton{domain.RefreshButton(bridgeDevice)}
}
