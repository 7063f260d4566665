package loop

import (
	"math"

	"github.com/billtubbs/pid-ref/cmd/global"
	"github.com/billtubbs/pid-ref/internal/pid"
	"github.com/billtubbs/pid-ref/internal/simulation"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
)

var (
	simulateLoopId string
	simulateGains  []float64
	simulateTfTs   float64
	simulateUMin   float64
	simulateUMax   float64

	simulatePlantGain float64
	simulatePlantTau  float64
	simulateSetpoint  float64
	simulateSteps     int
	simulateJitter    float64
	simulateSeed      int64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Plot the step response of a controller driving a first order plant",
	Long: `Simulates a controller driving the plant dy/dt = (K*u - y) / T towards a setpoint.
The controller is taken from the configuration when --id is given,
otherwise from the --gains, --tfts, --umin and --umax flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := simulationParameters()
		if err != nil {
			return err
		}

		samples, err := simulation.Run(simulation.Config{
			Parameters: params,
			Plant: simulation.FirstOrderPlant{
				Gain:         simulatePlantGain,
				TimeConstant: simulatePlantTau,
			},
			Setpoint: simulateSetpoint,
			Steps:    simulateSteps,
			Jitter:   simulateJitter,
			Seed:     simulateSeed,
		})
		if err != nil {
			return err
		}

		y := make([]float64, len(samples))
		u := make([]float64, len(samples))
		for i, s := range samples {
			y[i] = s.Y
			u[i] = s.U
		}

		graph := asciigraph.PlotMany(
			[][]float64{y, u},
			asciigraph.Height(15),
			asciigraph.Width(100),
			asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
			asciigraph.Caption("y (blue) / u (red)"),
		)
		ui.Printfln(graph)

		summary := simulation.Summarize(samples)
		riseTime := "-"
		if !math.IsNaN(summary.RiseTime) {
			riseTime = util.FormatFloat(summary.RiseTime)
		}
		tableString, err := global.RenderTable(
			[]string{"Final y", "Rise time", "Overshoot %", "Mean abs error"},
			[][]string{{
				util.FormatFloat(summary.Final),
				riseTime,
				util.FormatFloat(summary.Overshoot),
				util.FormatFloat(summary.MeanAbsError),
			}},
		)
		if err != nil {
			return err
		}
		ui.Printfln(tableString)
		return nil
	},
}

func init() {
	flags := simulateCmd.Flags()
	flags.StringVarP(&simulateLoopId, "id", "i", "", "Loop ID as specified in the config")
	flags.Float64SliceVar(&simulateGains, "gains", []float64{1, 0.2, 0}, "Controller gains kp,ki,kd")
	flags.Float64Var(&simulateTfTs, "tfts", 1, "Filter time constant as a multiple of the sample time")
	flags.Float64Var(&simulateUMin, "umin", math.Inf(-1), "Lower bound of the control signal")
	flags.Float64Var(&simulateUMax, "umax", math.Inf(1), "Upper bound of the control signal")
	flags.Float64Var(&simulatePlantGain, "plant-gain", 1, "Static gain K of the plant")
	flags.Float64Var(&simulatePlantTau, "plant-tau", 5, "Time constant T of the plant in sample times")
	flags.Float64VarP(&simulateSetpoint, "setpoint", "r", 1, "Setpoint of the step")
	flags.IntVarP(&simulateSteps, "steps", "n", 100, "Number of samples")
	flags.Float64Var(&simulateJitter, "jitter", 0, "Sigma of log-normally distributed execution periods")
	flags.Int64Var(&simulateSeed, "seed", 42, "Seed of the execution period jitter")
	Command.AddCommand(simulateCmd)
}

func simulationParameters() (pid.Parameters, error) {
	if simulateLoopId != "" {
		readConfig()
		loopConf, err := getLoopConfig(simulateLoopId)
		if err != nil {
			return pid.Parameters{}, err
		}
		return loopConf.Controller.ToParameters(), nil
	}

	gains := make([]float64, 3)
	copy(gains, simulateGains)
	params := pid.DefaultParameters(gains[0], gains[1], gains[2])
	params.TfTs = simulateTfTs
	params.UMin = simulateUMin
	params.UMax = simulateUMax
	return params, params.Validate()
}
