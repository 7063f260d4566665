package actuators

import (
	"fmt"
	"strings"
	"time"

	"github.com/billtubbs/pid-ref/internal/configuration"
	"github.com/billtubbs/pid-ref/internal/util"
)

const (
	cmdTimeout       = 2 * time.Second
	valuePlaceholder = "%value%"
)

// CmdActuator executes a trusted command for every control signal,
// each occurrence of "%value%" in the arguments is replaced with the signal.
type CmdActuator struct {
	ID     string                     `json:"id"`
	Config configuration.OutputConfig `json:"configuration"`
	Value  float64                    `json:"value"`
}

func (actuator *CmdActuator) GetId() string {
	return actuator.ID
}

func (actuator *CmdActuator) GetConfig() configuration.OutputConfig {
	return actuator.Config
}

func (actuator *CmdActuator) SetValue(value float64) error {
	conf := actuator.Config.Cmd

	formatted := util.FormatFloat(value)
	var args = []string{}
	for _, arg := range conf.Args {
		args = append(args, strings.ReplaceAll(arg, valuePlaceholder, formatted))
	}

	_, err := util.SafeCmdExecution(conf.Exec, args, cmdTimeout)
	if err != nil {
		return fmt.Errorf("output %s: %s", actuator.ID, err.Error())
	}

	actuator.Value = value
	return nil
}

func (actuator *CmdActuator) GetValue() float64 {
	return actuator.Value
}
