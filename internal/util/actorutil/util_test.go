package actorutil

import (
	"errors"
	"testing"
	"time"

	"github.com/berfenger/eta2mqtt/internal/core/domain"
	"github.com/berfenger/eta2mqtt/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsedMQTTCommandToCommand(t *testing.T) {
	cmd, err := ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{DeviceId: domain.BUTTON_ID_REFRESH, Payload: mqtt.MQTT_PAYLOAD_PRESS})
	require.NoError(t, err)
	assert.IsType(t, domain.RefreshRequest{}, cmd)

	_, err = ParsedMQTTCommandToCommand(mqtt.ParsedMQTTCommand{DeviceId: "restart"})
	assert.Error(t, err)
}

func TestBackgroundTaskRecover(t *testing.T) {
	var got string
	NewBackgroundTask(nil, func() (*string, error) {
		return nil, errors.New("boom")
	}).Recover(func(err error) string {
		return "recovered: " + err.Error()
	}).OnSuccess(func(s string) {
		got = s
	}).Run()

	assert.Equal(t, "recovered: boom", got)
}

func TestBackgroundTaskTimeout(t *testing.T) {
	var taskErr error
	called := false
	NewBackgroundTaskNoError(nil, func() *int {
		time.Sleep(500 * time.Millisecond)
		v := 1
		return &v
	}).WithTimeout(50 * time.Millisecond).OnError(func(err error) {
		taskErr = err
	}).OnSuccess(func(int) {
		called = true
	}).Run()

	assert.Error(t, taskErr)
	assert.False(t, called)
}

func TestBackgroundTaskNilResult(t *testing.T) {
	var taskErr error
	NewBackgroundTaskNoError(nil, func() *int { return nil }).OnError(func(err error) {
		taskErr = err
	}).Run()

	assert.ErrorIs(t, taskErr, ErrNilTaskResult)
}

type namedState struct {
	name string
}

func (s namedState) Name() string              { return s.name }
func (s namedState) Receive(ctx actor.Context) {}

func TestActorWithStatesName(t *testing.T) {
	s := ActorWithStates{Behavior: actor.NewBehavior()}
	assert.Equal(t, "", s.StateName())

	s.Become(namedState{name: "idle"})
	assert.Equal(t, "idle", s.StateName())

	s.BecomeStacked(namedState{name: "polling"})
	assert.Equal(t, "polling", s.StateName())

	s.UnbecomeStacked()
	assert.Equal(t, "idle", s.StateName())
}
