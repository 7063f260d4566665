package sensor

import (
	"fmt"
	"io"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/sensors"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var loopId string

var Command = &cobra.Command{
	Use:   "sensor",
	Short: "Print the current measurement of a loop",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		sensor, err := getSensor(loopId)
		if err != nil {
			return err
		}
		if closer, ok := sensor.(io.Closer); ok {
			defer closer.Close()
		}

		value, err := sensor.GetValue()
		if err != nil {
			return err
		}
		fmt.Println(util.FormatFloat(value))
		return nil
	},
}

func init() {
	Command.PersistentFlags().StringVarP(
		&loopId,
		"id", "i",
		"",
		"Loop ID as specified in the config",
	)
	_ = Command.MarkPersistentFlagRequired("id")
}

func getSensor(id string) (sensors.Sensor, error) {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	err := configuration.Validate(configPath)
	if err != nil {
		ui.Fatal("%v", err)
	}

	availableLoopIds := []string{}
	for _, config := range configuration.CurrentConfig.Loops {
		availableLoopIds = append(availableLoopIds, config.ID)
		if config.ID == id {
			return sensors.NewSensor(config.ID, config.Sensor)
		}
	}

	return nil, fmt.Errorf("no loop with id found: %s, options: %s", id, availableLoopIds)
}
