package simulation

import (
	"errors"
	"math"

	"github.com/billtubbs/pid-ref/internal/iodata"
	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/util"
)

// Config of a closed loop step response simulation. Times are in multiples
// of the nominal sample time.
type Config struct {
	Parameters pid.Parameters
	Plant      FirstOrderPlant
	Setpoint   float64
	Steps      int
	// Jitter is the sigma of log-normally distributed execution periods, 0 for a fixed period
	Jitter float64
	Seed   int64
}

// Sample of a simulation run
type Sample struct {
	T    float64
	Tx   float64
	R    float64
	Y    float64
	U    float64
	Mode pid.Mode
}

// Run simulates the controller driving the plant towards the setpoint.
// The output of every sample is held until the next one.
func Run(config Config) ([]Sample, error) {
	if config.Steps <= 0 {
		return nil, errors.New("steps must be > 0")
	}
	controller, err := pid.NewController(config.Parameters)
	if err != nil {
		return nil, err
	}

	periods := make([]float64, config.Steps)
	if config.Jitter > 0 {
		periods = iodata.IrregularIntervals(config.Steps, config.Jitter, config.Seed)
	} else {
		for i := range periods {
			periods[i] = 1
		}
	}
	// the first sample has no predecessor
	periods[0] = 1

	plant := config.Plant
	samples := make([]Sample, 0, config.Steps)
	t := 0.0
	u := 0.0
	for k := 0; k < config.Steps; k++ {
		tx := periods[k]
		if k > 0 {
			plant.Step(u, tx)
			t += tx
		}

		in := pid.NewInput(config.Setpoint, plant.Y)
		in.Tx = tx
		result := controller.Step(in)
		u = result.U

		samples = append(samples, Sample{
			T:    t,
			Tx:   tx,
			R:    config.Setpoint,
			Y:    plant.Y,
			U:    u,
			Mode: result.Mode,
		})
	}
	return samples, nil
}

// Summary of a step response
type Summary struct {
	Final float64
	// Overshoot beyond the setpoint in percent of the step size
	Overshoot float64
	// RiseTime until 90% of the step is reached, NaN if it never is
	RiseTime float64
	// MeanAbsError between setpoint and output
	MeanAbsError float64
}

func Summarize(samples []Sample) Summary {
	if len(samples) == 0 {
		return Summary{RiseTime: math.NaN()}
	}

	start := samples[0].Y
	setpoint := samples[0].R
	summary := Summary{
		Final:    samples[len(samples)-1].Y,
		RiseTime: math.NaN(),
	}

	var errs []float64
	peak := 0.0
	for _, s := range samples {
		errs = append(errs, math.Abs(s.R-s.Y))
		if setpoint == start {
			continue
		}
		progress := util.Ratio(s.Y, start, setpoint)
		if math.IsNaN(summary.RiseTime) && progress >= 0.9 {
			summary.RiseTime = s.T
		}
		peak = max(peak, progress)
	}

	summary.Overshoot = util.Coerce((peak-1)*100, 0, math.Inf(1))
	summary.MeanAbsError = util.Avg(errs)
	return summary
}
