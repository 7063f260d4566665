package pid

import "math"

const DefaultTfTs = 10.0

// MeasurementFilter is a second order filter providing a smoothed measurement
// and a smoothed derivative of it. Its coefficients are re-discretized
// whenever the execution period changes between two calls.
//
// A MeasurementFilter is not safe for concurrent use.
type MeasurementFilter struct {
	tfTs float64

	coefficients Coefficients

	// filtered measurement
	yf float64
	// filtered derivative of the measurement
	dyf float64

	// execution period used on the last call, NaN until the first call
	lastTx      float64
	initialized bool

	rediscretizations uint64
}

// NewMeasurementFilter creates a filter with the given time constant,
// expressed as a multiple of the nominal sample time.
func NewMeasurementFilter(tfTs float64) MeasurementFilter {
	return MeasurementFilter{
		tfTs:   tfTs,
		lastTx: math.NaN(),
	}
}

// Update feeds the measurement y taken after the (normalized) execution
// period tx into the filter and returns the new filtered value and derivative.
func (f *MeasurementFilter) Update(y float64, tx float64) (yf float64, dyf float64) {
	// exact comparison, any change of tx triggers a rediscretization
	if !f.initialized || math.Float64bits(tx) != math.Float64bits(f.lastTx) {
		f.coefficients = Discretize(f.tfTs, tx)
		f.initialized = true
		f.rediscretizations++
	}

	c := f.coefficients
	yfPrev := f.yf
	f.yf = c.A11*yfPrev + c.A12*f.dyf + c.B1*y
	f.dyf = c.A21*yfPrev + c.A22*f.dyf + c.B2*y
	f.lastTx = tx

	return f.yf, f.dyf
}

// Reset zeroes the filter state and forces a rediscretization on the next call.
func (f *MeasurementFilter) Reset() {
	f.yf = 0
	f.dyf = 0
	f.lastTx = math.NaN()
	f.initialized = false
}

func (f *MeasurementFilter) TfTs() float64 {
	return f.tfTs
}

// Coefficients returns the currently cached coefficients.
// They are all zero before the first call to Update.
func (f *MeasurementFilter) Coefficients() Coefficients {
	return f.coefficients
}

// Value returns the last filtered measurement and derivative.
func (f *MeasurementFilter) Value() (yf float64, dyf float64) {
	return f.yf, f.dyf
}

// LastTx returns the execution period of the last call and whether there was one since
// construction or the last Reset.
func (f *MeasurementFilter) LastTx() (float64, bool) {
	return f.lastTx, f.initialized
}

// Rediscretizations returns how often the coefficients have been computed
// over the lifetime of the filter.
func (f *MeasurementFilter) Rediscretizations() uint64 {
	return f.rediscretizations
}
