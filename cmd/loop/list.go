package loop

import (
	"math"
	"strings"

	"github.com/billtubbs/pid-ref/cmd/global"
	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured control loops",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		readConfig()

		var rows [][]string
		for _, loopConf := range configuration.CurrentConfig.Loops {
			rows = append(rows, loopRow(loopConf))
		}

		tableString, err := global.RenderTable(
			[]string{"ID", "Ts", "Kp", "Ki", "Kd", "TfTs", "Output range", "Mode", "Sensor", "Output"},
			rows,
		)
		if err != nil {
			return err
		}
		ui.Printfln(tableString)
		return nil
	},
}

func init() {
	Command.AddCommand(listCmd)
}

func loopRow(loopConf configuration.LoopConfig) []string {
	params := loopConf.Controller.ToParameters()
	mode := "manual"
	if loopConf.Command.Auto.Get() {
		mode = "auto"
	}
	return []string{
		loopConf.ID,
		loopConf.SampleTime.String(),
		util.FormatFloat(params.Kp),
		util.FormatFloat(params.Ki),
		util.FormatFloat(params.Kd),
		util.FormatFloat(params.TfTs),
		"[" + formatBound(params.UMin) + ", " + formatBound(params.UMax) + "]",
		mode,
		describeSensor(loopConf.Sensor),
		describeOutput(loopConf.Output),
	}
}

func formatBound(value float64) string {
	if math.IsInf(value, 0) {
		if value < 0 {
			return "-inf"
		}
		return "inf"
	}
	return util.FormatFloat(value)
}

func describeSensor(config configuration.SensorConfig) string {
	switch {
	case config.File != nil:
		return "file: " + config.File.Path
	case config.Cmd != nil:
		return "cmd: " + strings.Join(append([]string{config.Cmd.Exec}, config.Cmd.Args...), " ")
	case config.Serial != nil:
		return "serial: " + config.Serial.Port
	default:
		return "-"
	}
}

func describeOutput(config configuration.OutputConfig) string {
	switch {
	case config.File != nil:
		return "file: " + config.File.Path
	case config.Cmd != nil:
		return "cmd: " + strings.Join(append([]string{config.Cmd.Exec}, config.Cmd.Args...), " ")
	case config.Serial != nil:
		return "serial: " + config.Serial.Port
	default:
		return "-"
	}
}
