package iodata

import (
	"math"

	"github.com/billtubbs/pid-ref/internal/pid"
)

const (
	DefaultRtol = 1e-10
	DefaultAtol = 1e-12
)

// Replay feeds the inputs of all records through the controller, in order,
// and returns the computed control signals.
func Replay(controller *pid.Controller, records []Record) []float64 {
	outputs := make([]float64, 0, len(records))
	for _, record := range records {
		outputs = append(outputs, controller.Update(record.Input()))
	}
	return outputs
}

// Mismatch is a sample whose computed output differs from the expected one
type Mismatch struct {
	Index    int
	Expected float64
	Actual   float64
}

// IsClose reports whether |actual - expected| <= atol + rtol * |expected|
func IsClose(actual, expected, rtol, atol float64) bool {
	if actual == expected {
		// covers equal infinities
		return true
	}
	return math.Abs(actual-expected) <= atol+rtol*math.Abs(expected)
}

// Compare returns all samples outside of the tolerance, a length difference
// is reported as mismatches with NaN for the missing values.
func Compare(expected, actual []float64, rtol, atol float64) []Mismatch {
	var mismatches []Mismatch
	for i := 0; i < max(len(expected), len(actual)); i++ {
		e, a := math.NaN(), math.NaN()
		if i < len(expected) {
			e = expected[i]
		}
		if i < len(actual) {
			a = actual[i]
		}
		if !IsClose(a, e, rtol, atol) {
			mismatches = append(mismatches, Mismatch{Index: i, Expected: e, Actual: a})
		}
	}
	return mismatches
}

// ExpectedOutputs returns the u column of the records
func ExpectedOutputs(records []Record) []float64 {
	outputs := make([]float64, len(records))
	for i, record := range records {
		outputs[i] = record.U
	}
	return outputs
}
