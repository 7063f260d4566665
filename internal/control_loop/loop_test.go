package control_loop

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/persistence"
	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/testingutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLoop struct {
	loop        *DefaultControlLoop
	sensor      *testingutils.MockSensor
	actuator    *testingutils.MockActuator
	persistence *testingutils.MemoryPersistence
	clock       *testingutils.FakeClock
}

func createTestLoop(t *testing.T, config configuration.LoopConfig, values ...float64) testLoop {
	sensor := &testingutils.MockSensor{ID: config.ID, Values: values}
	actuator := &testingutils.MockActuator{ID: config.ID}
	p := testingutils.NewMemoryPersistence()
	clock := testingutils.NewFakeClock()

	loop, err := NewControlLoop(config, p, sensor, actuator)
	require.NoError(t, err)
	loop.clock = clock.Now

	return testLoop{
		loop:        loop,
		sensor:      sensor,
		actuator:    actuator,
		persistence: p,
		clock:       clock,
	}
}

func TestNewControlLoop_InvalidConfig(t *testing.T) {
	// GIVEN
	config := testingutils.CreateLoopConfig("oven")
	uMin := 200.0
	config.Controller.UMin = &uMin

	// WHEN
	_, err := NewControlLoop(config, testingutils.NewMemoryPersistence(), nil, nil)

	// THEN
	assert.ErrorIs(t, err, pid.ErrInvalidParameters)
	assert.ErrorContains(t, err, "loop oven:")
}

func TestDefaultControlLoop_Cycle(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)

	// WHEN
	err1 := l.loop.Cycle()
	l.clock.Advance(time.Second)
	err2 := l.loop.Cycle()

	// THEN
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, []float64{1.5, 2.0}, l.actuator.Values())

	snapshot := l.loop.Snapshot()
	assert.Equal(t, "oven", snapshot.ID)
	assert.Equal(t, uint64(2), snapshot.Samples)
	assert.Equal(t, uint64(0), snapshot.Errors)
	assert.Equal(t, 1.0, snapshot.Tx)
	assert.Equal(t, 2.0, snapshot.Result.U)
	assert.Equal(t, pid.ModeAuto, snapshot.Result.Mode)
	assert.Equal(t, 1.0, snapshot.TxAvg)
	require.NotNil(t, snapshot.UMin)
	assert.Equal(t, 0.0, *snapshot.UMin)
	assert.Equal(t, 100.0, *snapshot.UMax)
}

func TestDefaultControlLoop_Cycle_MeasuresExecutionPeriod(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)
	require.NoError(t, l.loop.Cycle())

	// WHEN
	l.clock.Advance(2 * time.Second)
	err := l.loop.Cycle()

	// THEN
	require.NoError(t, err)
	snapshot := l.loop.Snapshot()
	assert.Equal(t, 2.0, snapshot.Tx)
	// integral increment scales with Tx
	assert.Equal(t, 2.5, snapshot.Result.U)
	assert.Equal(t, 1.0, snapshot.Result.Dui)
	assert.Equal(t, 1.25, snapshot.TxAvg)
	assert.Equal(t, 1.0, snapshot.TxMin)
	assert.Equal(t, 2.0, snapshot.TxMax)
	assert.Equal(t, uint64(2), snapshot.Rediscretizations)
}

func TestDefaultControlLoop_Cycle_SkipsZeroPeriod(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)
	require.NoError(t, l.loop.Cycle())

	// WHEN
	err := l.loop.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.5}, l.actuator.Values())
	snapshot := l.loop.Snapshot()
	assert.Equal(t, uint64(1), snapshot.Samples)
	assert.Equal(t, uint64(1), snapshot.Errors)
	assert.Contains(t, snapshot.LastError, "tx must be positive")

	// WHEN
	l.clock.Advance(time.Second)
	err = l.loop.Cycle()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.0}, l.actuator.Values())
}

func TestDefaultControlLoop_Cycle_SensorError(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"))
	l.sensor.Err = errors.New("sensor offline")

	// WHEN
	err := l.loop.Cycle()

	// THEN
	assert.ErrorContains(t, err, "unable to read sensor: sensor offline")
	assert.Empty(t, l.actuator.Values())
	snapshot := l.loop.Snapshot()
	assert.Equal(t, uint64(0), snapshot.Samples)
	assert.Equal(t, uint64(1), snapshot.Errors)
}

func TestDefaultControlLoop_Cycle_ActuatorError(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)
	l.actuator.Err = errors.New("valve stuck")

	// WHEN
	err := l.loop.Cycle()

	// THEN
	assert.ErrorContains(t, err, "unable to apply output: valve stuck")
	snapshot := l.loop.Snapshot()
	assert.Equal(t, uint64(1), snapshot.Samples)
	assert.Equal(t, uint64(1), snapshot.Errors)
	assert.Equal(t, "unable to apply output: valve stuck", snapshot.LastError)
}

func TestDefaultControlLoop_SetCommand_Manual(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)
	require.NoError(t, l.loop.Cycle())

	// WHEN
	command := l.loop.GetCommand()
	assert.True(t, command.Auto)
	auto := false
	uMan := 7.0
	l.loop.SetCommand(command.Apply(CommandUpdate{Auto: &auto, UMan: &uMan}))
	l.clock.Advance(time.Second)
	err := l.loop.Cycle()

	// THEN
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 7.0}, l.actuator.Values())
	assert.Equal(t, pid.ModeManual, l.loop.Snapshot().Result.Mode)
	assert.Equal(t, 1.0, l.loop.GetCommand().R)
}

func TestDefaultControlLoop_ResumesFromPersistedOutput(t *testing.T) {
	// GIVEN
	config := testingutils.CreateLoopConfig("oven")
	config.Command.R = 0
	l := createTestLoop(t, config, 0)
	require.NoError(t, l.persistence.SaveLoopSnapshot("oven", persistence.LoopSnapshot{U: 10, Mode: pid.ModeAuto}))

	// WHEN
	l.loop.restore()
	resuming := l.loop.Snapshot().Resuming
	require.NoError(t, l.loop.Cycle())
	l.clock.Advance(time.Second)
	require.NoError(t, l.loop.Cycle())

	// THEN
	assert.True(t, resuming)
	assert.Equal(t, []float64{10, 10}, l.actuator.Values())
	snapshot := l.loop.Snapshot()
	assert.False(t, snapshot.Resuming)
	assert.Equal(t, pid.ModeAuto, snapshot.Result.Mode)
}

func TestDefaultControlLoop_Retune(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)

	// WHEN
	err := l.loop.Retune(2, 1, 0)
	invalidErr := l.loop.Retune(math.NaN(), 1, 0)

	// THEN
	assert.NoError(t, err)
	assert.ErrorIs(t, invalidErr, pid.ErrInvalidParameters)
	snapshot := l.loop.Snapshot()
	assert.Equal(t, 2.0, snapshot.Kp)
	assert.Equal(t, 1.0, snapshot.Ki)

	// WHEN
	require.NoError(t, l.loop.Cycle())

	// THEN
	assert.Equal(t, []float64{3.0}, l.actuator.Values())
}

func TestDefaultControlLoop_Reset(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)
	require.NoError(t, l.loop.Cycle())
	require.NoError(t, l.loop.persist())
	_, err := l.persistence.LoadLoopSnapshot("oven")
	require.NoError(t, err)

	// WHEN
	err = l.loop.Reset()

	// THEN
	require.NoError(t, err)
	_, err = l.persistence.LoadLoopSnapshot("oven")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	assert.Equal(t, uint64(0), l.loop.Snapshot().Samples)

	// WHEN
	l.clock.Advance(10 * time.Second)
	require.NoError(t, l.loop.Cycle())

	// THEN
	assert.Equal(t, []float64{1.5, 1.5}, l.actuator.Values())
	assert.Equal(t, 1.0, l.loop.Snapshot().Tx)
}

func TestDefaultControlLoop_PersistWithoutSamples(t *testing.T) {
	// GIVEN
	l := createTestLoop(t, testingutils.CreateLoopConfig("oven"), 0)

	// WHEN
	err := l.loop.persist()

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, l.persistence.Snapshots)
}

func TestDefaultControlLoop_Run(t *testing.T) {
	// GIVEN
	config := testingutils.CreateLoopConfig("oven")
	config.SampleTime = 5 * time.Millisecond
	sensor := &testingutils.MockSensor{ID: "oven", Values: []float64{0}}
	actuator := &testingutils.MockActuator{ID: "oven"}
	p := testingutils.NewMemoryPersistence()
	loop, err := NewControlLoop(config, p, sensor, actuator)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)

	// WHEN
	go func() {
		done <- loop.Run(ctx)
	}()
	require.Eventually(t, func() bool {
		return len(actuator.Values()) >= 3
	}, 2*time.Second, time.Millisecond)
	cancel()

	// THEN
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("control loop did not stop")
	}
	snapshot, err := p.LoadLoopSnapshot("oven")
	require.NoError(t, err)
	assert.Equal(t, actuator.GetValue(), snapshot.U)
	assert.Equal(t, pid.ModeAuto, snapshot.Mode)
}
