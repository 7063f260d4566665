package statistics

import (
	"strings"
	"testing"

	"github.com/billtubbs/pid-ref/internal/control_loop"
	"github.com/billtubbs/pid-ref/internal/testingutils"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLoop(t *testing.T, id string) control_loop.ControlLoop {
	loop, err := control_loop.NewControlLoop(
		testingutils.CreateLoopConfig(id),
		testingutils.NewMemoryPersistence(),
		&testingutils.MockSensor{ID: id, Values: []float64{0}},
		&testingutils.MockActuator{ID: id},
	)
	require.NoError(t, err)
	return loop
}

func TestLoopCollector_Collect(t *testing.T) {
	// GIVEN
	loop := createLoop(t, "oven")
	require.NoError(t, loop.Cycle())
	collector := NewLoopCollector([]control_loop.ControlLoop{loop})

	expected := `
# HELP pidref_loop_u Control signal applied by the loop
# TYPE pidref_loop_u gauge
pidref_loop_u{id="oven"} 1.5
# HELP pidref_loop_r Reference of the loop
# TYPE pidref_loop_r gauge
pidref_loop_r{id="oven"} 1
# HELP pidref_loop_samples_total Number of samples computed by the loop
# TYPE pidref_loop_samples_total counter
pidref_loop_samples_total{id="oven"} 1
# HELP pidref_loop_mode Mode of the last sample of the loop (1 for the active mode)
# TYPE pidref_loop_mode gauge
pidref_loop_mode{id="oven",mode="auto"} 1
pidref_loop_mode{id="oven",mode="manual"} 0
pidref_loop_mode{id="oven",mode="track"} 0
`

	// WHEN
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"pidref_loop_u", "pidref_loop_r", "pidref_loop_samples_total", "pidref_loop_mode")

	// THEN
	assert.NoError(t, err)
}

func TestLoopCollector_CollectMultipleLoops(t *testing.T) {
	// GIVEN
	collector := NewLoopCollector([]control_loop.ControlLoop{
		createLoop(t, "oven"),
		createLoop(t, "chiller"),
	})

	// WHEN
	count := testutil.CollectAndCount(collector)
	modeCount := testutil.CollectAndCount(collector, "pidref_loop_mode")

	// THEN
	assert.Equal(t, 2*(9+3), count)
	assert.Equal(t, 6, modeCount)
}

func TestLoopCollector_Lint(t *testing.T) {
	// GIVEN
	collector := NewLoopCollector([]control_loop.ControlLoop{createLoop(t, "oven")})

	// WHEN
	problems, err := testutil.CollectAndLint(collector)

	// THEN
	require.NoError(t, err)
	assert.Empty(t, problems)
}
