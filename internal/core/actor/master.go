package actor

import (
	"errors"
	"fmt"
	"log"
	"time"

	adactor "github.com/berfenger/eta2mqtt/internal/adapter/actor"
	"github.com/berfenger/eta2mqtt/internal/config"
	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/metrics"
	. "github.com/berfenger/eta2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

type ETAActorProvider func() *adactor.ETAActor

type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck healthCheckResult
	eventStream        *eventstream.EventStream
	metrics            *metrics.Metrics
	etaActor           *actor.PID
	mqttActor          *actor.PID
	sensorPollActor    *actor.PID
	haDiscoveryActor   *actor.PID
	etaActorProvider   ETAActorProvider
	mqttActorProvider  MQTTActorProvider
	logger             *zap.Logger
}

type healthCheckResult struct {
	etaActorHealthy        bool
	mqttActorHealthy       bool
	sensorPollActorHealthy bool
	checksReceived         int
	respondTo              *actor.PID
}

func NewMasterOfPuppetsActor(config config.Config, etaActorProvider ETAActorProvider, mqttActorProvider MQTTActorProvider, m *metrics.Metrics, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:            config,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		logger:            ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:       &eventstream.EventStream{},
		metrics:           m,
		etaActorProvider:  etaActorProvider,
		mqttActorProvider: mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// start ETA child
		etaActorPID, err := state.startETAActor(ctx)
		if err != nil {
			panic(err)
		}
		state.etaActor = etaActorPID

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start SensorPoll child
		sensorPollActorPID, err := state.startSensorPollActor(ctx)
		if err != nil {
			panic(err)
		}
		state.sensorPollActor = sensorPollActorPID

		// start HA Discovery
		if state.config.MQTT.HADiscoveryEnable {
			haDiscoveryActorPID, err := state.startHADiscoveryActor(ctx)
			if err != nil {
				panic(err)
			}
			state.haDiscoveryActor = haDiscoveryActorPID
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		// ETA Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.etaActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_ETA,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		// SensorPoll Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.sensorPollActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_SENSOR_POLL,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case adactor.ParsedCommand:
		// redirect parsedCommand to actor
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command == nil {
			return
		}
		cmd, err := ParsedMQTTCommandToCommand(*msg.Command)
		if err != nil {
			state.logger.Warn("master@default unknown command", zap.Error(err))
			return
		}
		switch pcmd := cmd.(type) {
		case domain.RefreshRequest:
			ctx.Send(state.sensorPollActor, pcmd)
		}
	case domain.RefreshRequest:
		ctx.Send(state.sensorPollActor, msg)
	case domain.GetSensorSnapshotRequest:
		ctx.Forward(state.sensorPollActor)
	case domain.RepublishDiscoveryRequest:
		if state.haDiscoveryActor != nil {
			ctx.Send(state.haDiscoveryActor, msg)
		}
	case *actor.Terminated:
		// if some actor fails on boot, terminate
		if msg.Who.Id == state.etaActor.Id {
			state.logger.Error("master@default eta error")
			panic(errors.New("eta terminated"))
		}
	default:
		state.logger.Debug("master@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.CancelReceiveTimeout()
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_ETA:
				state.currentHealthCheck.etaActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.currentHealthCheck.mqttActorHealthy = true
			case domain.ACTOR_ID_SENSOR_POLL:
				state.currentHealthCheck.sensorPollActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {
			ctx.CancelReceiveTimeout()

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) startETAActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	etaProps := actor.PropsFromProducer(func() actor.Actor {
		return state.etaActorProvider()
	}, actor.WithSupervisor(supervisor))
	etaActorPID, err := ctx.SpawnNamed(etaProps, domain.ACTOR_ID_ETA)
	if err != nil {
		return nil, err
	}

	return etaActorPID, nil
}

func (state *MasterOfPuppetsActor) startSensorPollActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(3, 10*time.Second, decider)

	sensorPollProps := actor.PropsFromProducer(func() actor.Actor {
		return NewSensorPollActor(&state.config, state.etaActor, state.eventStream, state.metrics, state.logger)
	}, actor.WithSupervisor(supervisor))
	sensorPollActorPID, err := ctx.SpawnNamed(sensorPollProps, domain.ACTOR_ID_SENSOR_POLL)
	if err != nil {
		return nil, err
	}

	return sensorPollActorPID, nil
}

func (state *MasterOfPuppetsActor) startHADiscoveryActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	haDiscProps := actor.PropsFromProducer(func() actor.Actor {
		return NewHADiscoveryActor(&state.config, state.etaActor, state.mqttActor, state.logger)
	}, actor.WithSupervisor(supervisor))
	haDiscPID, err := ctx.SpawnNamed(haDiscProps, domain.ACTOR_ID_HA_DISCOVERY)
	if err != nil {
		return nil, err
	}

	return haDiscPID, nil
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *healthCheckResult) reset() {
	state.etaActorHealthy = false
	state.mqttActorHealthy = false
	state.sensorPollActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.etaActorHealthy && state.mqttActorHealthy && state.sensorPollActorHealthy
}

func (state *healthCheckResult) stateName() string {
	switch {
	case state.allHealthy():
		return "healthy"
	case !state.etaActorHealthy:
		return "eta unavailable"
	case !state.mqttActorHealthy:
		return "mqtt unavailable"
	default:
		return "polling unavailable"
	}
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
		State:   state.stateName(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
