package iodata

import (
	"math"
	"testing"

	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsClose(t *testing.T) {
	assert.True(t, IsClose(1, 1, DefaultRtol, DefaultAtol))
	assert.True(t, IsClose(1e6+1e-5, 1e6, DefaultRtol, DefaultAtol))
	assert.True(t, IsClose(5e-13, 0, DefaultRtol, DefaultAtol))
	assert.True(t, IsClose(math.Inf(1), math.Inf(1), DefaultRtol, DefaultAtol))
	assert.False(t, IsClose(1e-11, 0, DefaultRtol, DefaultAtol))
	assert.False(t, IsClose(1+1e-9, 1, DefaultRtol, DefaultAtol))
	assert.False(t, IsClose(math.NaN(), math.NaN(), DefaultRtol, DefaultAtol))
}

func TestCompare(t *testing.T) {
	// GIVEN
	expected := []float64{1, 2, 3}
	actual := []float64{1, 2.5}

	// WHEN
	mismatches := Compare(expected, actual, DefaultRtol, DefaultAtol)

	// THEN
	require.Len(t, mismatches, 2)
	assert.Equal(t, Mismatch{Index: 1, Expected: 2, Actual: 2.5}, mismatches[0])
	assert.Equal(t, 2, mismatches[1].Index)
	assert.True(t, math.IsNaN(mismatches[1].Actual))
}

func TestReplay(t *testing.T) {
	// GIVEN
	params := pid.DefaultParameters(1, 0.5, 0)
	controller, err := pid.NewController(params)
	require.NoError(t, err)
	records := []Record{
		{R: 1, Tx: 1, Auto: true},
		{R: 1, Tx: 1, Auto: true},
		{R: 1, UMan: -2, Tx: 1, Auto: false},
	}

	// WHEN
	outputs := Replay(controller, records)

	// THEN
	assert.Equal(t, []float64{1.5, 2.0, -2}, outputs)
}
