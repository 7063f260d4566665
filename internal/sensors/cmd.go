package sensors

import (
	"fmt"
	"strconv"
	"time"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/ui"
	"github.com/billtubbs/pid-ref/internal/util"
)

const cmdTimeout = 2 * time.Second

// CmdSensor executes a trusted command and parses its output as the measurement
type CmdSensor struct {
	ID     string                     `json:"id"`
	Config configuration.SensorConfig `json:"configuration"`
}

func (sensor CmdSensor) GetId() string {
	return sensor.ID
}

func (sensor CmdSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor CmdSensor) GetValue() (float64, error) {
	exec := sensor.Config.Cmd.Exec
	args := sensor.Config.Cmd.Args
	result, err := util.SafeCmdExecution(exec, args, cmdTimeout)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: %s", sensor.ID, err.Error())
	}

	value, err := strconv.ParseFloat(result, 64)
	if err != nil {
		ui.Warning("sensor %s: Unable to read float from command output: %s", sensor.ID, exec)
		return 0, err
	}

	return value, nil
}
