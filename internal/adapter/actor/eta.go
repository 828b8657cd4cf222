package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/eta2mqtt/internal/config"
	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/core/service"
	"github.com/berfenger/eta2mqtt/internal/util/actorutil"
	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const (
	DEFAULT_REQUEST_TIMEOUT = 5 * time.Second
)

// ETAActor owns the REST reader. Requests are served one at a time, anything
// arriving while a controller call is in flight is stashed.
type ETAActor struct {
	behavior       actor.Behavior
	stash          *actorutil.Stash
	reader         eta_rest.RestReader
	endpoints      []domain.Endpoint
	cfg            config.ETAConfig
	requestTimeout time.Duration
	logger         *zap.Logger

	// bound once per actor lifetime, the menu is not fetched again
	devicesInfo *domain.GetDevicesInfoResponse
	// last controller failure, cleared by the next successful request
	lastErr error
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewETAActor(reader eta_rest.RestReader, endpoints []domain.Endpoint, cfg config.ETAConfig, logger *zap.Logger) *ETAActor {
	timeout := time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond
	if timeout <= 0 {
		timeout = DEFAULT_REQUEST_TIMEOUT
	}
	act := &ETAActor{
		reader:         reader,
		endpoints:      endpoints,
		cfg:            cfg,
		requestTimeout: timeout,
		behavior:       actor.NewBehavior(),
		stash:          &actorutil.Stash{},
		logger:         actorutil.ActorLogger(domain.ACTOR_ID_ETA, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *ETAActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *ETAActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("eta@starting started")
		if err := state.reader.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.closeReader()
	default:
		state.logger.Debug("eta@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *ETAActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("eta@default: ActorHealthRequest")
		health := domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_ETA,
			Healthy: state.lastErr == nil,
			State:   "idle",
		}
		if state.lastErr != nil {
			health.State = "unreachable"
		}
		ctx.Respond(health)
	case domain.GetDevicesInfoRequest:
		state.logger.Debug("eta@default: GetDevicesInfoRequest")
		if state.devicesInfo != nil {
			actorutil.ForRequest(msg).Respond(ctx, *state.devicesInfo)
			return
		}
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		// serials and menu are three requests
		timeout := 3 * state.requestTimeout
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getDevicesInfo),
			mapTaskResult[domain.GetDevicesInfoResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetDevicesInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(timeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingController)
	case domain.GetSensorValuesRequest:
		state.logger.Debug("eta@default: GetSensorValuesRequest", zap.Int("sensors", len(msg.Sensors)))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		sensors := msg.Sensors
		timeout := time.Duration(len(sensors)+1) * state.requestTimeout
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.GetSensorValuesResponse {
			return state.getSensorValues(sensors)
		}),
			mapTaskResult[domain.GetSensorValuesResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetSensorValuesResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(timeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingController)
	case *actor.Stopping:
		state.closeReader()
	case *actor.Restarting:
		state.closeReader()
	default:
		state.logger.Debug("eta@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *ETAActor) WaitingController(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("eta@WaitingController backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		state.trackHealth(msg.message)
		if info, ok := msg.message.(domain.GetDevicesInfoResponse); ok && !info.HasResponseError() {
			state.devicesInfo = &info
		}
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.closeReader()
	case *actor.Restarting:
		state.closeReader()
	default:
		state.logger.Debug("eta@WaitingController stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// trackHealth marks the controller unreachable when device info could not be
// read or when every sensor of a poll failed.
func (a *ETAActor) trackHealth(message any) {
	switch resp := message.(type) {
	case domain.GetDevicesInfoResponse:
		a.lastErr = resp.ResponseError
	case domain.GetSensorValuesResponse:
		if resp.HasResponseError() {
			a.lastErr = resp.ResponseError
			return
		}
		a.lastErr = nil
		for i, r := range resp.Readings {
			if r.Error == nil {
				return
			}
			if i == len(resp.Readings)-1 {
				a.lastErr = fmt.Errorf("all %d sensor reads failed: %w", len(resp.Readings), r.Error)
			}
		}
	}
}

func (a *ETAActor) closeReader() {
	if err := a.reader.Close(); err != nil {
		a.logger.Warn("could not close REST reader", zap.Error(err))
	}
}

func (a *ETAActor) getDevicesInfo() (*domain.GetDevicesInfoResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*a.requestTimeout)
	defer cancel()
	info, err := a.reader.GetInfo(ctx)
	if err != nil {
		a.logger.Error("could not read controller serials", zap.Error(err))
		return nil, err
	}

	menuCtx, menuCancel := context.WithTimeout(context.Background(), a.requestTimeout)
	defer menuCancel()
	menu, err := a.reader.GetMenu(menuCtx)
	if err != nil {
		a.logger.Error("could not read controller menu", zap.Error(err))
		return nil, err
	}

	resolver := service.MenuNameResolver{
		Menu:          menu,
		IncludeParent: a.cfg.ResolveParentNames,
	}
	sensors := service.BindSensors(a.endpoints, info, resolver)
	for _, s := range sensors {
		if s.Name == service.UNKNOWN_NAME || s.Name == service.UNKNOWN_NAME+s.Endpoint.NameSuffix {
			a.logger.Warn("no menu entry for endpoint", zap.String("uri", s.Endpoint.URI))
		}
	}
	for _, dup := range service.DuplicateUniqueIds(sensors) {
		a.logger.Warn("duplicate unique id", zap.String("unique_id", dup))
	}
	a.logger.Info("controller resolved",
		zap.String("serial1", info.Serial1),
		zap.String("serial2", info.Serial2),
		zap.Int("sensors", len(sensors)))

	return &domain.GetDevicesInfoResponse{
		Controller: info,
		Sensors:    sensors,
	}, nil
}

// getSensorValues fetches every sensor in order. A failing sensor only
// produces an errored reading.
func (a *ETAActor) getSensorValues(sensors []domain.ETASensor) *domain.GetSensorValuesResponse {
	readings := make([]domain.SensorReading, 0, len(sensors))
	for _, s := range sensors {
		readings = append(readings, a.readSensor(s))
	}
	return &domain.GetSensorValuesResponse{
		Readings: readings,
	}
}

func (a *ETAActor) readSensor(sensor domain.ETASensor) domain.SensorReading {
	ctx, cancel := context.WithTimeout(context.Background(), a.requestTimeout)
	defer cancel()
	reading := domain.SensorReading{SensorId: sensor.Id}
	value, err := a.reader.GetValue(ctx, sensor.Endpoint.URI)
	if err != nil {
		a.logger.Warn("sensor fetch failed", zap.String("sensor", sensor.Id), zap.Error(err))
		reading.Error = err
		return reading
	}
	f, err := value.Float()
	if err != nil {
		a.logger.Warn("sensor value not numeric", zap.String("sensor", sensor.Id), zap.String("value", value.StrValue), zap.Error(err))
		reading.Error = err
		return reading
	}
	reading.Value = f * sensor.Endpoint.Factor
	reading.Decimals = sensor.Decimals(value.Precision())
	return reading
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
