package pid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscretize(t *testing.T) {
	tests := []struct {
		name     string
		tfTs     float64
		tx       float64
		expected Coefficients
	}{
		{
			name: "nominal period",
			tfTs: 10,
			tx:   1,
			expected: Coefficients{
				A11: 0.9953211598395555,
				A12: 0.9048374180359595,
				A21: -0.009048374180359597,
				A22: 0.8143536762323635,
				B1:  0.004678840160444522,
				B2:  0.009048374180359597,
			},
		},
		{
			name: "double period",
			tfTs: 10,
			tx:   2,
			expected: Coefficients{
				A11: 0.9824769036935782,
				A12: 0.8187307530779818,
				A21: -0.016374615061559638,
				A22: 0.6549846024623854,
				B1:  0.017523096306421793,
				B2:  0.016374615061559638,
			},
		},
		{
			name: "half period, smaller time constant",
			tfTs: 5,
			tx:   0.5,
			expected: Coefficients{
				A11: 0.9953211598395555,
				A12: 0.9048374180359595,
				A21: -0.018096748360719193,
				A22: 0.8143536762323635,
				B1:  0.004678840160444522,
				B2:  0.018096748360719193,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// WHEN
			result := Discretize(tt.tfTs, tt.tx)

			// THEN
			assert.InDelta(t, tt.expected.A11, result.A11, 1e-15)
			assert.InDelta(t, tt.expected.A12, result.A12, 1e-15)
			assert.InDelta(t, tt.expected.A21, result.A21, 1e-15)
			assert.InDelta(t, tt.expected.A22, result.A22, 1e-15)
			assert.InDelta(t, tt.expected.B1, result.B1, 1e-15)
			assert.InDelta(t, tt.expected.B2, result.B2, 1e-15)
		})
	}
}

func TestDiscretize_UnitStaticGain(t *testing.T) {
	// GIVEN
	for _, tx := range []float64{0.1, 0.5, 1, 3, 17} {
		// WHEN
		c := Discretize(10, tx)

		// THEN
		// (yf, dyf) = (1, 0) is a fixed point for a constant input of 1
		assert.InDelta(t, 1.0, c.A11+c.B1, 1e-12, "tx: %v", tx)
		assert.InDelta(t, 0.0, c.A21+c.B2, 1e-12, "tx: %v", tx)
	}
}

func TestDiscretize_InvalidInputPropagates(t *testing.T) {
	// WHEN
	result := Discretize(10, math.NaN())

	// THEN
	assert.True(t, math.IsNaN(result.A11))
	assert.True(t, math.IsNaN(result.B2))
}
