package actor

import (
	"context"
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/eta2mqtt/internal/adapter/actor"
	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/metrics"
	"github.com/berfenger/eta2mqtt/internal/util"
	"github.com/berfenger/eta2mqtt/internal/util/actorutil"
	"github.com/berfenger/eta2mqtt/pkg/eta_rest"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	uriOutside = "/120/10601/0/0/12197"
	uriBoiler  = "/264/10891/0/11109/0"
)

// switchableReader fails the boiler temperature on demand.
type switchableReader struct {
	eta_rest.TestRestReader
	mu   sync.Mutex
	fail bool
}

func (r *switchableReader) setFailing(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func (r *switchableReader) GetValue(ctx context.Context, uri string) (*eta_rest.Value, error) {
	r.mu.Lock()
	fail := r.fail
	r.mu.Unlock()
	if fail && uri == uriBoiler {
		return nil, eta_rest.ErrControllerError
	}
	return r.TestRestReader.GetValue(ctx, uri)
}

func coreTestEndpoints() []domain.Endpoint {
	return []domain.Endpoint{
		domain.Endpoint{URI: uriOutside, Unit: domain.UNIT_CELSIUS}.WithDefaults(),
		domain.Endpoint{URI: uriBoiler, Unit: domain.UNIT_CELSIUS}.WithDefaults(),
	}
}

func snapshot(t *testing.T, root *actor.RootContext, pid *actor.PID) domain.GetSensorSnapshotResponse {
	t.Helper()
	res, err := root.RequestFuture(pid, domain.GetSensorSnapshotRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	return res.(domain.GetSensorSnapshotResponse)
}

func TestSensorPollActor(t *testing.T) {
	cfg := util.LoadTestConfig()
	cfg.MonitorConfig.PollIntervalMillis = 60000
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()
	root := as.Root

	reader := &switchableReader{}
	etaPID := root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewETAActor(reader, coreTestEndpoints(), cfg.ETA, logger)
	}))

	es := &eventstream.EventStream{}
	var mu sync.Mutex
	var updates []domain.FloatSensorUpdateEvent
	var lastPollEvents int
	sub := es.Subscribe(func(evt interface{}) {
		mu.Lock()
		defer mu.Unlock()
		switch ev := evt.(type) {
		case domain.FloatSensorUpdateEvent:
			updates = append(updates, ev)
		case domain.TextSensorUpdateEvent:
			if ev.Id == domain.SENSOR_ID_LAST_POLL {
				lastPollEvents++
			}
		}
	})
	defer es.Unsubscribe(sub)

	m := metrics.New()
	pollPID := root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewSensorPollActor(&cfg, etaPID, es, m, logger)
	}))

	// first poll runs right after the sensors are bound
	assert.Eventually(t, func() bool {
		snap := snapshot(t, root, pollPID)
		return len(snap.Sensors) == 2 && snap.Sensors[0].Value != nil && snap.Sensors[1].Value != nil
	}, 5*time.Second, 100*time.Millisecond)

	snap := snapshot(t, root, pollPID)
	assert.Equal(t, "eta_aussentemperatur", snap.Sensors[0].Sensor.Id)
	assert.InDelta(t, 7.5, *snap.Sensors[0].Value, 1e-9)
	assert.InDelta(t, 71.0, *snap.Sensors[1].Value, 1e-9)
	assert.False(t, snap.LastPoll.IsZero())

	// a failing sensor keeps its previous value
	reader.setFailing(true)
	root.Send(pollPID, domain.RefreshRequest{})

	assert.Eventually(t, func() bool {
		return snapshot(t, root, pollPID).Sensors[1].LastError != ""
	}, 5*time.Second, 100*time.Millisecond)

	snap = snapshot(t, root, pollPID)
	require.NotNil(t, snap.Sensors[1].Value)
	assert.InDelta(t, 71.0, *snap.Sensors[1].Value, 1e-9)
	assert.Empty(t, snap.Sensors[0].LastError)

	mu.Lock()
	// two polls, the failed sensor published once
	assert.Len(t, updates, 3)
	assert.Equal(t, 2, lastPollEvents)
	mu.Unlock()

	res, err := root.RequestFuture(pollPID, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	health := res.(domain.ActorHealthResponse)
	assert.True(t, health.Healthy)
	assert.Equal(t, POLL_STATE_IDLE, health.State)
}

func TestSensorPollActorUnavailableController(t *testing.T) {
	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()
	root := as.Root

	// nothing answers on this pid
	deadPID := actor.NewPID(as.Address(), "missing")

	pollPID := root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewSensorPollActor(&cfg, deadPID, nil, nil, logger)
	}))

	res, err := root.RequestFuture(pollPID, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	health := res.(domain.ActorHealthResponse)
	assert.False(t, health.Healthy)
	assert.Equal(t, POLL_STATE_WAITING_INFO, health.State)

	snap := snapshot(t, root, pollPID)
	assert.Empty(t, snap.Sensors)
}
