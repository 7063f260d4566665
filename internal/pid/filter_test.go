package pid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasurementFilter_FirstUpdate(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(10)
	c := Discretize(10, 1)

	// WHEN
	yf, dyf := f.Update(1, 1)

	// THEN
	assert.Equal(t, c.B1, yf)
	assert.Equal(t, c.B2, dyf)
	assert.Equal(t, uint64(1), f.Rediscretizations())
	tx, ok := f.LastTx()
	assert.True(t, ok)
	assert.Equal(t, 1.0, tx)
}

func TestMeasurementFilter_UsesPreviousState(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(10)
	c := Discretize(10, 1)
	yf1, dyf1 := f.Update(2, 1)

	// WHEN
	yf2, dyf2 := f.Update(3, 1)

	// THEN
	assert.Equal(t, c.A11*yf1+c.A12*dyf1+c.B1*3, yf2)
	assert.Equal(t, c.A21*yf1+c.A22*dyf1+c.B2*3, dyf2)
}

func TestMeasurementFilter_ConvergesToConstantMeasurement(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(10)

	// WHEN
	var yf, dyf float64
	for i := 0; i < 1000; i++ {
		yf, dyf = f.Update(4.2, 1)
	}

	// THEN
	assert.InDelta(t, 4.2, yf, 1e-9)
	assert.InDelta(t, 0, dyf, 1e-9)
}

func TestMeasurementFilter_DerivativeOfRamp(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(5)

	// WHEN
	var dyf float64
	for i := 0; i < 1000; i++ {
		_, dyf = f.Update(0.5*float64(i), 1)
	}

	// THEN
	assert.InEpsilon(t, 0.5, dyf, 0.01)
}

func TestMeasurementFilter_CachesCoefficients(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(10)
	f.Update(1, 1)
	expected := f.Coefficients()

	// WHEN
	f.Update(2, 1)

	// THEN
	assert.Equal(t, uint64(1), f.Rediscretizations())
	assert.Equal(t, expected, f.Coefficients())
}

func TestMeasurementFilter_RediscretizesOnPeriodChange(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(10)
	f.Update(1, 1)

	// WHEN
	f.Update(1, 2)

	// THEN
	assert.Equal(t, uint64(2), f.Rediscretizations())
	assert.Equal(t, Discretize(10, 2), f.Coefficients())

	// WHEN
	f.Update(1, 1)

	// THEN
	assert.Equal(t, uint64(3), f.Rediscretizations())
	assert.Equal(t, Discretize(10, 1), f.Coefficients())
}

func TestMeasurementFilter_RediscretizesOnTinyPeriodChange(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(10)
	f.Update(1, 1)
	jittered := math.Nextafter(1, 2)

	// WHEN
	f.Update(1, jittered)

	// THEN
	assert.Equal(t, uint64(2), f.Rediscretizations())
	assert.Equal(t, Discretize(10, jittered), f.Coefficients())
}

func TestMeasurementFilter_Reset(t *testing.T) {
	// GIVEN
	f := NewMeasurementFilter(10)
	f.Update(5, 1)
	f.Update(6, 1)

	// WHEN
	f.Reset()

	// THEN
	yf, dyf := f.Value()
	assert.Equal(t, 0.0, yf)
	assert.Equal(t, 0.0, dyf)
	_, ok := f.LastTx()
	assert.False(t, ok)

	// WHEN
	yf, dyf = f.Update(1, 1)

	// THEN
	assert.Equal(t, uint64(2), f.Rediscretizations())
	assert.Equal(t, Discretize(10, 1).B1, yf)
	assert.Equal(t, Discretize(10, 1).B2, dyf)
}
