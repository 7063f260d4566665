package pid

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidParameters = errors.New("invalid controller parameters")
	ErrInvalidInput      = errors.New("invalid controller input")
)

// Parameters of a Controller.
type Parameters struct {
	// Proportional gain
	Kp float64 `json:"kp"`
	// Integral gain
	Ki float64 `json:"ki"`
	// Derivative gain
	Kd float64 `json:"kd"`
	// Measurement filter time constant as a multiple of the nominal sample time
	TfTs float64 `json:"tfTs"`
	// Lower bound of the control signal
	UMin float64 `json:"uMin"`
	// Upper bound of the control signal
	UMax float64 `json:"uMax"`
	// Bias used instead of the previous control signal for P and PD control
	U0 float64 `json:"u0"`
	// Setpoint weight of the proportional term
	B float64 `json:"b"`
}

// DefaultParameters returns the parameters for the given gains with an
// unbounded output, TfTs = 10, no bias and a setpoint weight of 1.
func DefaultParameters(kp, ki, kd float64) Parameters {
	return Parameters{
		Kp:   kp,
		Ki:   ki,
		Kd:   kd,
		TfTs: DefaultTfTs,
		UMin: math.Inf(-1),
		UMax: math.Inf(1),
		U0:   0,
		B:    1,
	}
}

func (p Parameters) Validate() error {
	for name, value := range map[string]float64{
		"kp": p.Kp, "ki": p.Ki, "kd": p.Kd, "tfTs": p.TfTs, "u0": p.U0, "b": p.B,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameters, name, value)
		}
	}
	if math.IsNaN(p.UMin) || math.IsNaN(p.UMax) {
		return fmt.Errorf("%w: output bounds must not be NaN", ErrInvalidParameters)
	}
	if p.TfTs <= 0 {
		return fmt.Errorf("%w: tfTs must be > 0, got %v", ErrInvalidParameters, p.TfTs)
	}
	if p.UMin > p.UMax {
		return fmt.Errorf("%w: uMin (%v) must be <= uMax (%v)", ErrInvalidParameters, p.UMin, p.UMax)
	}
	return nil
}

// State is the memory of the controller, the contributions of the previous sample.
type State struct {
	// previous (saturated) control signal
	UOld float64 `json:"uOld"`
	// previous proportional term
	UpOld float64 `json:"upOld"`
	// previous derivative term
	UdOld float64 `json:"udOld"`
	// previous feedforward term
	UffOld float64 `json:"uffOld"`
}

// Input of a single controller update.
// Use NewInput to get the default values, the zero value selects manual mode
// and an invalid execution period.
type Input struct {
	// Reference (setpoint)
	R float64 `json:"r"`
	// Process measurement
	Y float64 `json:"y"`
	// Feedforward control signal
	Uff float64 `json:"uff"`
	// Control signal used in manual mode
	UMan float64 `json:"uMan"`
	// Tracking signal for bumpless transfer
	UTrack float64 `json:"uTrack"`
	// Execution period, normalized to the nominal sample time
	Tx float64 `json:"tx"`
	// Tracking mode
	Track bool `json:"track"`
	// Automatic (true) or manual (false) mode
	Auto bool `json:"auto"`
	// Active output limit(s) downstream of the controller
	Windup WindupMode `json:"windup"`
}

// NewInput returns the input for reference r and measurement y in
// automatic mode with a nominal execution period.
func NewInput(r, y float64) Input {
	return Input{
		R:      r,
		Y:      y,
		Tx:     1,
		Auto:   true,
		Windup: WindupNone,
	}
}

// Validate checks the preconditions of Controller.Update.
func (in Input) Validate() error {
	if math.IsNaN(in.Tx) || math.IsInf(in.Tx, 0) || in.Tx <= 0 {
		return fmt.Errorf("%w: tx must be positive and finite, got %v", ErrInvalidInput, in.Tx)
	}
	for name, value := range map[string]float64{
		"r": in.R, "y": in.Y, "uff": in.Uff, "uMan": in.UMan, "uTrack": in.UTrack,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidInput, name, value)
		}
	}
	return nil
}

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeTrack  Mode = "track"
	ModeManual Mode = "manual"
)

// Result of a single controller update.
type Result struct {
	// saturated control signal
	U float64 `json:"u"`
	// filtered measurement
	Yf float64 `json:"yf"`
	// filtered derivative of the measurement
	Dyf float64 `json:"dyf"`

	// control signal increments, all zero in manual mode
	Dup  float64 `json:"dup"`
	Dui  float64 `json:"dui"`
	Dud  float64 `json:"dud"`
	Duff float64 `json:"duff"`

	Mode Mode `json:"mode"`
}

// Controller is a PID controller in incremental (velocity) form with a
// filtered derivative on the measurement, setpoint weighting, feedforward,
// manual mode and tracking for bumpless transfer.
//
// Every call to Update depends on the state left behind by the previous
// one, so calls must be sequenced. A Controller is not safe for concurrent
// use, confine it to the goroutine running the loop or synchronize externally.
type Controller struct {
	params Parameters
	state  State
	filter MeasurementFilter
}

// NewController creates a controller with zeroed state.
func NewController(params Parameters) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Controller{
		params: params,
		filter: NewMeasurementFilter(params.TfTs),
	}, nil
}

// Update computes the control signal for one sample.
func (c *Controller) Update(in Input) float64 {
	return c.Step(in).U
}

// Step computes the control signal for one sample, like Update, and
// reports the intermediate values of the computation.
func (c *Controller) Step(in Input) Result {
	p := &c.params
	s := &c.state

	yf, dyf := c.filter.Update(in.Y, in.Tx)
	result := Result{
		Yf:  yf,
		Dyf: dyf,
	}

	var u float64
	if in.Auto {
		result.Mode = ModeAuto

		if p.Ki == 0 {
			// P or PD control, start from the bias
			s.UOld = p.U0
			s.UpOld = 0
			s.UdOld = 0
			s.UffOld = 0
			// stays at 1 until reconfigured
			p.B = 1
		}

		if in.Track {
			result.Mode = ModeTrack
			s.UOld = in.UTrack
			s.UpOld = 0
			s.UdOld = 0
			s.UffOld = 0
		}

		result.Dup = p.Kp*(p.B*in.R-yf) - s.UpOld
		result.Dui = AntiWindup(p.Ki*(in.R-yf)*in.Tx, in.Windup)
		result.Dud = (-p.Kd*dyf - s.UdOld) / in.Tx
		result.Duff = in.Uff - s.UffOld

		u = s.UOld + result.Dup + result.Dui + result.Dud + result.Duff
	} else {
		result.Mode = ModeManual
		u = in.UMan
	}

	u = max(min(u, p.UMax), p.UMin)

	s.UOld = u
	s.UpOld = p.Kp * (p.B*in.R - yf)
	s.UdOld = -p.Kd * dyf
	s.UffOld = in.Uff

	result.U = u
	return result
}

// Reset zeroes the controller state and resets the measurement filter.
// A setpoint weight forced to 1 by P/PD operation is not restored.
func (c *Controller) Reset() {
	c.state = State{}
	c.filter.Reset()
}

// SetGains changes the gains while keeping the controller state.
func (c *Controller) SetGains(kp, ki, kd float64) error {
	params := c.params
	params.Kp = kp
	params.Ki = ki
	params.Kd = kd
	if err := params.Validate(); err != nil {
		return err
	}
	c.params = params
	return nil
}

// Parameters returns the current parameters, including a setpoint weight
// that may have been forced to 1.
func (c *Controller) Parameters() Parameters {
	return c.params
}

func (c *Controller) State() State {
	return c.state
}

// Filter returns a copy of the owned measurement filter.
func (c *Controller) Filter() MeasurementFilter {
	return c.filter
}
