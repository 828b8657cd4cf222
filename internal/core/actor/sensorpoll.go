package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/eta2mqtt/internal/config"
	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/core/events"
	"github.com/berfenger/eta2mqtt/internal/metrics"
	. "github.com/berfenger/eta2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	POLL_STATE_WAITING_INFO   = "waiting_info"
	POLL_STATE_IDLE           = "idle"
	POLL_STATE_WAITING_VALUES = "polling"
)

// SensorPollActor reads every bound sensor on a fixed interval, keeps the
// latest snapshot and publishes updates to the event stream.
type SensorPollActor struct {
	ActorWithStates
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	etaActor    *actor.PID
	config      *config.Config
	eventStream *eventstream.EventStream
	metrics     *metrics.Metrics

	sensors   []domain.ETASensor
	snapshots map[string]*domain.SensorSnapshot
	lastPoll  time.Time

	logger *zap.Logger
}

type pollTick struct {
}

type retryDevicesInfo struct {
}

type pollState struct {
	name    string
	receive actor.ReceiveFunc
}

func (s pollState) Name() string {
	return s.name
}

func (s pollState) Receive(ctx actor.Context) {
	s.receive(ctx)
}

func NewSensorPollActor(config *config.Config, etaActor *actor.PID, eventStream *eventstream.EventStream, m *metrics.Metrics, logger *zap.Logger) *SensorPollActor {
	act := &SensorPollActor{
		ActorWithStates: ActorWithStates{Behavior: actor.NewBehavior()},
		config:          config,
		etaActor:        etaActor,
		stash:           &Stash{},
		logger:          ActorLogger(domain.ACTOR_ID_SENSOR_POLL, logger),
		eventStream:     eventStream,
		metrics:         m,
		snapshots:       make(map[string]*domain.SensorSnapshot),
	}
	act.Become(pollState{name: "starting", receive: act.StartingReceive})
	return act
}

func (state *SensorPollActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

func (state *SensorPollActor) pollInterval() time.Duration {
	return time.Duration(state.config.MonitorConfig.PollIntervalMillis) * time.Millisecond
}

func (state *SensorPollActor) requestTimeout() time.Duration {
	timeout := time.Duration(state.config.ETA.RequestTimeoutMillis) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return timeout
}

func (state *SensorPollActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("sensorpoll@starting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.requestDevicesInfo(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("sensorpoll@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SensorPollActor) requestDevicesInfo(ctx actor.Context) {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.etaActor, domain.GetDevicesInfoRequest{}, 4*state.requestTimeout()), func(err error) any {
		return domain.GetDevicesInfoResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
	state.Become(pollState{name: POLL_STATE_WAITING_INFO, receive: state.WaitingInfoReceive})
}

func (state *SensorPollActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetDevicesInfoResponse:
		if msg.HasResponseError() {
			state.logger.Error("sensorpoll@waitingInfo GetDevicesInfoResponse", zap.Error(msg.GetResponseError()))
			state.scheduler.RequestOnce(state.pollInterval(), ctx.Self(), retryDevicesInfo{})
			return
		}
		state.logger.Debug("sensorpoll@waitingInfo GetDevicesInfoResponse", zap.Int("sensors", len(msg.Sensors)))
		state.sensors = msg.Sensors
		for i := range state.sensors {
			state.snapshots[state.sensors[i].Id] = &domain.SensorSnapshot{Sensor: state.sensors[i]}
		}
		state.Become(pollState{name: POLL_STATE_IDLE, receive: state.DefaultReceive})
		ctx.Send(ctx.Self(), pollTick{})
		state.stash.UnstashAll(ctx)
	case retryDevicesInfo:
		state.requestDevicesInfo(ctx)
	case domain.ActorHealthRequest:
		state.respondHealth(ctx, false)
	case domain.GetSensorSnapshotRequest:
		state.respondSnapshot(ctx, msg)
	case domain.RefreshRequest:
		state.logger.Debug("sensorpoll@waitingInfo: refresh ignored, no sensors bound yet")
	default:
		state.logger.Debug("sensorpoll@waitingInfo: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SensorPollActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("sensorpoll@default: ActorHealthRequest")
		state.respondHealth(ctx, true)
	case domain.GetSensorSnapshotRequest:
		state.respondSnapshot(ctx, msg)
	case pollTick:
		state.logger.Debug("sensorpoll@default tick")
		state.poll(ctx)
		// schedule next tick
		state.scheduler.RequestOnce(state.pollInterval(), ctx.Self(), pollTick{})
	case domain.RefreshRequest:
		state.logger.Info("sensorpoll@default refresh requested")
		state.poll(ctx)
	default:
		state.logger.Debug("sensorpoll@default: unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *SensorPollActor) poll(ctx actor.Context) {
	timeout := time.Duration(len(state.sensors)+2) * state.requestTimeout()
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.etaActor, domain.GetSensorValuesRequest{Sensors: state.sensors}, timeout), func(err error) any {
		return domain.GetSensorValuesResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	})
	state.BecomeStacked(pollState{name: POLL_STATE_WAITING_VALUES, receive: state.WaitingValuesReceive})
}

func (state *SensorPollActor) WaitingValuesReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetSensorValuesResponse:
		if msg.HasResponseError() {
			state.logger.Error("sensorpoll@waiting GetSensorValuesResponse error", zap.Error(msg.GetResponseError()))
		} else {
			state.applyReadings(msg.Readings, time.Now())
		}
		state.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		state.respondHealth(ctx, true)
	default:
		state.logger.Debug("sensorpoll@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// applyReadings updates the snapshot. A failed reading keeps the previous
// value and only records the error.
func (state *SensorPollActor) applyReadings(readings []domain.SensorReading, now time.Time) {
	failed := 0
	for _, r := range readings {
		snap, ok := state.snapshots[r.SensorId]
		if !ok {
			continue
		}
		if r.Error != nil {
			failed++
			snap.LastError = r.Error.Error()
			continue
		}
		value := r.Value
		snap.Value = &value
		snap.Decimals = r.Decimals
		snap.UpdatedAt = now
		snap.LastError = ""
	}
	state.lastPoll = now

	if failed > 0 {
		state.logger.Warn("sensorpoll: some sensors failed", zap.Int("failed", failed), zap.Int("total", len(readings)))
	}
	if state.metrics != nil {
		state.metrics.ObservePoll(state.sensors, readings, now)
	}
	if state.eventStream != nil {
		for _, ev := range events.ReadingsToUpdateEvents(readings) {
			state.eventStream.Publish(ev)
		}
		state.eventStream.Publish(events.LastPollUpdateEvent(now))
	}
}

func (state *SensorPollActor) respondHealth(ctx actor.Context, healthy bool) {
	ctx.Respond(domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_SENSOR_POLL,
		Healthy: healthy,
		State:   state.StateName(),
	})
}

func (state *SensorPollActor) respondSnapshot(ctx actor.Context, req domain.GetSensorSnapshotRequest) {
	resp := domain.GetSensorSnapshotResponse{
		LastPoll: state.lastPoll,
		Sensors:  make([]domain.SensorSnapshot, 0, len(state.sensors)),
	}
	for _, s := range state.sensors {
		snap := *state.snapshots[s.Id]
		if snap.Value != nil {
			value := *snap.Value
			snap.Value = &value
		}
		resp.Sensors = append(resp.Sensors, snap)
	}
	ForRequest(req).Respond(ctx, resp)
}
