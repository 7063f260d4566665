package simulation

import "math"

// FirstOrderPlant is the process dy/dt = (K*u - y) / T, integrated exactly
// for a control signal held constant over each step.
type FirstOrderPlant struct {
	// static gain K
	Gain float64
	// time constant T, in multiples of the nominal sample time
	TimeConstant float64
	// output y
	Y float64
}

// Step advances the plant by dt with the input u and returns the new output
func (p *FirstOrderPlant) Step(u float64, dt float64) float64 {
	if p.TimeConstant <= 0 {
		p.Y = p.Gain * u
		return p.Y
	}
	decay := math.Exp(-dt / p.TimeConstant)
	p.Y = decay*p.Y + (1-decay)*p.Gain*u
	return p.Y
}
